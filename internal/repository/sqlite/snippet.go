package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snippets-api/internal/apperror"
	"github.com/sakif/snippets-api/internal/model"
	"github.com/sakif/snippets-api/internal/repository"
)

// compile-time check that *DB implements repository.SnippetRepository
var _ repository.SnippetRepository = (*DB)(nil)

// Create inserts a new snippet.
//
// POINTER RECEIVER (*model.Snippet):
// We take a pointer so we can MODIFY the original struct — after Create(),
// the caller's snippet has the generated xid ID and timestamps.
//
// PARAMETERIZED QUERIES (the ? placeholders):
// NEVER build SQL strings with fmt.Sprintf or string concatenation —
// that creates SQL injection vulnerabilities. The driver safely escapes
// every placeholder value.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()
	now := time.Now()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO snippets (id, owner_id, title, code, language, style, linenos, highlighted, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.OwnerID,
		snippet.Title,
		snippet.Code,
		snippet.Language,
		snippet.Style,
		snippet.LineNos,
		snippet.Highlighted,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	return nil
}

// snippetColumns is the SELECT list shared by every snippet read, joined
// with users so each row carries the owner's username for display.
const snippetColumns = `
	s.id, s.owner_id, u.username, s.title, s.code, s.language, s.style,
	s.linenos, s.highlighted, s.created_at, s.updated_at`

func scanSnippet(scan func(dest ...any) error) (*model.Snippet, error) {
	var s model.Snippet
	err := scan(
		&s.ID,
		&s.OwnerID,
		&s.OwnerUsername,
		&s.Title,
		&s.Code,
		&s.Language,
		&s.Style,
		&s.LineNos,
		&s.Highlighted,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID retrieves a single snippet by its ID. No ownership check here —
// visibility is the service layer's rule; storage just reads rows.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT`+snippetColumns+`
		 FROM snippets s JOIN users u ON u.id = s.owner_id
		 WHERE s.id = ?`,
		id,
	)

	snippet, err := scanSnippet(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	return snippet, nil
}

// buildFilter translates a SnippetFilter into a WHERE clause and its
// arguments. Every predicate is optional; set ones compose with AND.
//
// Substring matches use instr(lower(...)) instead of LIKE so user input
// containing % or _ needs no escaping.
func buildFilter(filter repository.SnippetFilter) (string, []any) {
	clauses := []string{"1=1"}
	var args []any

	if filter.OwnerID != "" {
		clauses = append(clauses, "s.owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Language != "" {
		clauses = append(clauses, "lower(s.language) = lower(?)")
		args = append(args, filter.Language)
	}
	if filter.CreatedAfter != nil {
		clauses = append(clauses, "s.created_at >= ?")
		args = append(args, *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		clauses = append(clauses, "s.created_at <= ?")
		args = append(args, *filter.CreatedBefore)
	}
	if filter.SearchTitle != "" {
		clauses = append(clauses, "instr(lower(s.title), lower(?)) > 0")
		args = append(args, filter.SearchTitle)
	}
	if filter.SearchCode != "" {
		clauses = append(clauses, "instr(lower(s.code), lower(?)) > 0")
		args = append(args, filter.SearchCode)
	}

	return strings.Join(clauses, " AND "), args
}

// List retrieves snippets matching the filter, newest first, with
// LIMIT/OFFSET pagination.
func (db *DB) List(ctx context.Context, filter repository.SnippetFilter, opts repository.ListOptions) ([]model.Snippet, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	where, args := buildFilter(filter)
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT`+snippetColumns+`
		 FROM snippets s JOIN users u ON u.id = s.owner_id
		 WHERE `+where+`
		 ORDER BY s.created_at DESC, s.id DESC
		 LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	// CRITICAL: always close rows — a leaked rows handle pins a pool
	// connection until the app runs out.
	defer rows.Close()

	snippets := make([]model.Snippet, 0, limit)
	for rows.Next() {
		s, err := scanSnippet(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	return snippets, nil
}

// Count returns how many snippets match the filter (ignoring pagination),
// for the list envelope's total.
func (db *DB) Count(ctx context.Context, filter repository.SnippetFilter) (int, error) {
	where, args := buildFilter(filter)

	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snippets s WHERE `+where,
		args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting snippets: %w", err)
	}

	return count, nil
}

// Update saves the mutable fields plus the recomputed highlighted HTML.
// ID, owner, and created_at are immutable.
//
// RowsAffected tells us whether the WHERE matched — 0 rows means the
// snippet doesn't exist, one query instead of SELECT + UPDATE.
func (db *DB) Update(ctx context.Context, snippet *model.Snippet) error {
	snippet.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, code = ?, language = ?, style = ?, linenos = ?, highlighted = ?, updated_at = ?
		 WHERE id = ?`,
		snippet.Title,
		snippet.Code,
		snippet.Language,
		snippet.Style,
		snippet.LineNos,
		snippet.Highlighted,
		snippet.UpdatedAt,
		snippet.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", snippet.ID)
	}

	return nil
}

// Delete removes a snippet by ID. Same RowsAffected pattern as Update.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}

	return nil
}
