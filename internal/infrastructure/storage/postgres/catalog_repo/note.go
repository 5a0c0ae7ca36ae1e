package catalog_repo

import (
	"pharmaledger/internal/domain/notes"
	"pharmaledger/internal/infrastructure/storage/postgres"
)

const noteTable = "notes"

// NoteRepo implements notes.Repository. Search matches the title.
type NoteRepo struct {
	*BaseCatalogRepo[*notes.Note]
}

var _ notes.Repository = (*NoteRepo)(nil)

// NewNoteRepo creates a new note repository.
func NewNoteRepo(txm *postgres.TxManager) *NoteRepo {
	return &NoteRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm, noteTable, "note",
			postgres.ExtractDBColumns[notes.Note](),
			func() *notes.Note { return &notes.Note{} },
		).
			WithSearchColumn("title").
			WithOrderColumns("created_at", "scheduled_at"),
	}
}
