package model

// Tool names shared by the analyzer and the notes backend adapters.
const (
	ToolSearchNotes = "search_noteapp"
	ToolGetContent  = "get_noteapp_content"
	ToolCreateNote  = "create_note"
	ToolUpdateNote  = "update_note"
	ToolDeleteNote  = "delete_note"
)

// SearchInput is the argument object of search_noteapp.
type SearchInput struct {
	Query string `json:"query" validate:"required"`
}

// GetContentInput is the argument object of get_noteapp_content.
type GetContentInput struct {
	ItemID   int      `json:"item_id" validate:"gt=0"`
	ItemType ItemType `json:"item_type" validate:"oneof=note transcript"`
}

// CreateNoteInput is the argument object of create_note.
type CreateNoteInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}
