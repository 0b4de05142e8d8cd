package notes

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/knaughts/internal/backend"
	"github.com/dmitrijs2005/knaughts/internal/common"
	"github.com/dmitrijs2005/knaughts/internal/logging"
)

const (
	recordsPath = "/api/collections/notes/records"
	ownerField  = "discord_user_id"
	fieldList   = "id,title,content,created,updated"
)

// Repository is the note store seen by interaction handlers.
//
// Contract:
//   - Create/Update encrypt title and content independently before any
//     network call and tag the record with the owner's user id.
//   - Update, Get and Delete are scoped to the owner through the backend
//     filter; a foreign note behaves as if it did not exist.
//   - List returns PageSize notes per page, newest first. An empty page is
//     common.ErrEmptyList; one undecryptable note fails the whole page.
//   - Delete never errors: it reports success as a bool.
//
// Errors match the sentinels in package common via errors.Is.
type Repository interface {
	Create(ctx context.Context, userID, title, content string) (string, error)
	Update(ctx context.Context, userID, noteID, title, content string) (Note, error)
	List(ctx context.Context, userID string, page int) (Page, error)
	Get(ctx context.Context, noteID, userID string) (Note, error)
	Delete(ctx context.Context, noteID, userID string) bool
}

// Doer sends backend requests; *backend.Client implements it.
type Doer interface {
	Do(ctx context.Context, req backend.Request, out any) (int, error)
}

// Cipher encrypts single fields; *cryptox.Box implements it.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encoded string) (string, error)
}

type repository struct {
	client Doer
	cipher Cipher
	log    logging.Logger
}

func NewRepository(client Doer, cipher Cipher, log logging.Logger) Repository {
	return &repository{client: client, cipher: cipher, log: log}
}

type record struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Created string `json:"created"`
	Updated string `json:"updated"`
}

type listResponse struct {
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalItems int      `json:"totalItems"`
	TotalPages int      `json:"totalPages"`
	Items      []record `json:"items"`
}

func ownerFilter(userID string) string {
	return backend.And(backend.Eq(ownerField, userID))
}

func (r *repository) encryptPair(title, content string) (string, string, error) {
	encTitle, err := r.cipher.Encrypt(title)
	if err != nil {
		return "", "", err
	}
	encContent, err := r.cipher.Encrypt(content)
	if err != nil {
		return "", "", err
	}
	return encTitle, encContent, nil
}

func (r *repository) Create(ctx context.Context, userID, title, content string) (string, error) {
	if err := validateFields(title, content); err != nil {
		return "", err
	}
	encTitle, encContent, err := r.encryptPair(title, content)
	if err != nil {
		return "", fmt.Errorf("create note: %w", err)
	}

	var out record
	status, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   recordsPath,
		Parts: map[string]string{
			ownerField: userID,
			"title":    encTitle,
			"content":  encContent,
		},
	}, &out)
	if err != nil {
		return "", fmt.Errorf("create note: %w", err)
	}
	if err := backend.Check("create note", status); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: create note: response without id", common.ErrBackend)
	}

	r.log.Debug(ctx, "note created", "user", userID, "note", out.ID)
	return out.ID, nil
}

func (r *repository) Update(ctx context.Context, userID, noteID, title, content string) (Note, error) {
	if err := ValidateID(noteID); err != nil {
		return Note{}, err
	}
	if err := validateFields(title, content); err != nil {
		return Note{}, err
	}
	encTitle, encContent, err := r.encryptPair(title, content)
	if err != nil {
		return Note{}, fmt.Errorf("update note: %w", err)
	}

	var out record
	status, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodPatch,
		Path:   recordsPath + "/" + noteID,
		Query:  url.Values{"fields": {fieldList}, "filter": {ownerFilter(userID)}},
		Parts:  map[string]string{"title": encTitle, "content": encContent},
	}, &out)
	if err != nil {
		return Note{}, fmt.Errorf("update note: %w", err)
	}
	if err := backend.Check("update note", status); err != nil {
		return Note{}, err
	}

	// the caller already holds the plaintext it sent
	note := Note{ID: noteID, Title: title, Content: content}
	note.Created, note.Updated = r.timestamps(ctx, out)

	r.log.Debug(ctx, "note updated", "user", userID, "note", noteID)
	return note, nil
}

func (r *repository) List(ctx context.Context, userID string, page int) (Page, error) {
	page = max(page, 1)

	var out listResponse
	status, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   recordsPath,
		Query: url.Values{
			"page":    {strconv.Itoa(page)},
			"perPage": {strconv.Itoa(PageSize)},
			"filter":  {ownerFilter(userID)},
			"sort":    {"-created"},
			"fields":  {fieldList},
		},
	}, &out)
	if err != nil {
		return Page{}, fmt.Errorf("list notes: %w", err)
	}
	if err := backend.Check("list notes", status); err != nil {
		return Page{}, err
	}
	if len(out.Items) == 0 {
		return Page{}, fmt.Errorf("list notes page %d: %w", page, common.ErrEmptyList)
	}

	items := make([]Note, 0, len(out.Items))
	for _, rec := range out.Items {
		note, err := r.decode(ctx, rec)
		if err != nil {
			r.log.Error(ctx, "note could not be decrypted", "user", userID, "note", rec.ID, "error", err)
			return Page{}, fmt.Errorf("list notes: note %s: %w", rec.ID, err)
		}
		items = append(items, note)
	}

	return Page{Items: items, CurrentPage: page, TotalPages: out.TotalPages}, nil
}

func (r *repository) Get(ctx context.Context, noteID, userID string) (Note, error) {
	if err := ValidateID(noteID); err != nil {
		return Note{}, err
	}

	var out listResponse
	status, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   recordsPath,
		Query: url.Values{
			"filter": {backend.And(backend.Eq("id", noteID), backend.Eq(ownerField, userID))},
			"fields": {fieldList},
		},
	}, &out)
	if err != nil {
		return Note{}, fmt.Errorf("get note: %w", err)
	}
	if err := backend.Check("get note", status); err != nil {
		return Note{}, err
	}
	if len(out.Items) == 0 {
		return Note{}, fmt.Errorf("get note %s: %w", noteID, common.ErrNotFound)
	}
	if len(out.Items) > 1 {
		r.log.Warn(ctx, "note id matched more than one record", "note", noteID, "matches", len(out.Items))
	}

	note, err := r.decode(ctx, out.Items[0])
	if err != nil {
		r.log.Error(ctx, "note could not be decrypted", "user", userID, "note", noteID, "error", err)
		return Note{}, fmt.Errorf("get note %s: %w", noteID, err)
	}
	return note, nil
}

func (r *repository) Delete(ctx context.Context, noteID, userID string) bool {
	if err := ValidateID(noteID); err != nil {
		return false
	}

	status, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodDelete,
		Path:   recordsPath + "/" + noteID,
		Query:  url.Values{"filter": {ownerFilter(userID)}},
	}, nil)
	if err != nil {
		r.log.Warn(ctx, "delete note failed", "user", userID, "note", noteID, "error", err)
		return false
	}
	if status != http.StatusNoContent {
		r.log.Warn(ctx, "delete note rejected", "user", userID, "note", noteID, "status", status)
		return false
	}

	r.log.Debug(ctx, "note deleted", "user", userID, "note", noteID)
	return true
}

// decode decrypts both fields; no Note is built unless both succeed.
func (r *repository) decode(ctx context.Context, rec record) (Note, error) {
	title, err := r.cipher.Decrypt(rec.Title)
	if err != nil {
		return Note{}, err
	}
	content, err := r.cipher.Decrypt(rec.Content)
	if err != nil {
		return Note{}, err
	}

	note := Note{ID: rec.ID, Title: title, Content: content}
	note.Created, note.Updated = r.timestamps(ctx, rec)
	return note, nil
}

func (r *repository) timestamps(ctx context.Context, rec record) (string, string) {
	created, err := displayTime(rec.Created)
	if err != nil {
		r.log.Warn(ctx, "bad created timestamp", "note", rec.ID, "value", rec.Created, "error", err)
	}
	updated, err := displayTime(rec.Updated)
	if err != nil {
		r.log.Warn(ctx, "bad updated timestamp", "note", rec.ID, "value", rec.Updated, "error", err)
	}
	return created, updated
}
