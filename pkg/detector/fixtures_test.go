/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: fixtures_test.go
Description: Shared reference paragraphs and store helpers for detector tests.
*/

package detector_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kleascm/langfilter/pkg/compression"
	"github.com/kleascm/langfilter/pkg/corpus"
	"github.com/stretchr/testify/require"
)

var references = map[string]string{
	"english": "All human beings are born free and equal in dignity and rights. They are endowed " +
		"with reason and conscience and should act towards one another in a spirit of brotherhood. " +
		"Everyone has the right to life, liberty and security of person. No one shall be held in " +
		"slavery or servitude. Everyone has the right to freedom of thought, conscience and religion; " +
		"this right includes freedom to change his religion or belief, and freedom, either alone or " +
		"in community with others and in public or private, to manifest his religion or belief in " +
		"teaching, practice, worship and observance.",
	"french": "Tous les êtres humains naissent libres et égaux en dignité et en droits. Ils sont doués " +
		"de raison et de conscience et doivent agir les uns envers les autres dans un esprit de " +
		"fraternité. Tout individu a droit à la vie, à la liberté et à la sûreté de sa personne. Nul ne " +
		"sera tenu en esclavage ni en servitude. Toute personne a droit à la liberté de pensée, de " +
		"conscience et de religion; ce droit implique la liberté de changer de religion ou de " +
		"conviction ainsi que la liberté de manifester sa religion ou sa conviction, seule ou en commun.",
	"spanish": "Todos los seres humanos nacen libres e iguales en dignidad y derechos y, dotados como " +
		"están de razón y conciencia, deben comportarse fraternalmente los unos con los otros. Todo " +
		"individuo tiene derecho a la vida, a la libertad y a la seguridad de su persona. Nadie estará " +
		"sometido a esclavitud ni a servidumbre. Toda persona tiene derecho a la libertad de " +
		"pensamiento, de conciencia y de religión; este derecho incluye la libertad de cambiar de " +
		"religión o de creencia, así como la libertad de manifestar su religión o su creencia.",
}

// writeReferences writes one file per language into a fresh directory
func writeReferences(t *testing.T, docs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0644))
	}
	return dir
}

func loadStore(t *testing.T, docs map[string]string) *corpus.Store {
	t.Helper()
	store, err := corpus.Load(context.Background(), writeReferences(t, docs), compression.NewDefaultAdapter(), corpus.Options{Sparsity: 1})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}
