package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store keeps rendered content in SQLite. Replace swaps the whole content
// set in one transaction, so readers never see a half-loaded catalog.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path. ":memory:"
// opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path == "" || path == ":memory:" {
		return OpenMemory()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return newStore(db, path)
}

// OpenMemory creates an in-memory store.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Every pooled connection would get its own empty database.
	db.SetMaxOpenConns(1)
	return newStore(db, ":memory:")
}

func newStore(db *sql.DB, path string) (*Store, error) {
	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS profile (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    name TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    site TEXT NOT NULL DEFAULT '',
    tagline TEXT NOT NULL DEFAULT '',
    about_html TEXT NOT NULL DEFAULT '',
    summary_html TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS projects (
    position INTEGER PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    summary_html TEXT NOT NULL DEFAULT '',
    link TEXT NOT NULL DEFAULT '',
    image TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS skills (
    position INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS resume_items (
    section_position INTEGER NOT NULL,
    section_title TEXT NOT NULL,
    position INTEGER NOT NULL,
    title TEXT NOT NULL,
    org TEXT NOT NULL DEFAULT '',
    start_date TEXT NOT NULL DEFAULT '',
    end_date TEXT NOT NULL DEFAULT '',
    logo TEXT NOT NULL DEFAULT '',
    bullets TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (section_position, position)
);

CREATE TABLE IF NOT EXISTS tracks (
    position INTEGER PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    src TEXT NOT NULL
);
`

// Replace swaps the stored content for c. Markdown must already be
// rendered into the HTML fields.
func (s *Store) Replace(ctx context.Context, c *Content) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"profile", "projects", "skills", "resume_items", "tracks"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	p := c.Profile
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO profile (id, name, role, email, site, tagline, about_html, summary_html)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Role, p.Email, p.Site, p.Tagline, string(p.AboutHTML), string(p.SummaryHTML)); err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}

	for i, pr := range c.Projects {
		tags, err := json.Marshal(pr.Tags)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO projects (position, slug, title, summary_html, link, image, tags)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, pr.Slug, pr.Title, string(pr.SummaryHTML), pr.Link, pr.Image, string(tags)); err != nil {
			return fmt.Errorf("inserting project %s: %w", pr.Slug, err)
		}
	}

	for i, name := range c.Resume.Skills {
		if _, err := tx.ExecContext(ctx, `INSERT INTO skills (position, name) VALUES (?, ?)`, i, name); err != nil {
			return fmt.Errorf("inserting skill: %w", err)
		}
	}

	for si, sec := range c.Resume.Sections {
		for ii, it := range sec.Items {
			bullets, err := json.Marshal(it.Bullets)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO resume_items (section_position, section_title, position, title, org, start_date, end_date, logo, bullets)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				si, sec.Title, ii, it.Title, it.Org, it.Start, it.End, it.Logo, string(bullets)); err != nil {
				return fmt.Errorf("inserting resume item %q: %w", it.Title, err)
			}
		}
	}

	for i, t := range c.Playlist {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tracks (position, title, src) VALUES (?, ?, ?)`, i, t.Title, t.Src); err != nil {
			return fmt.Errorf("inserting track: %w", err)
		}
	}

	return tx.Commit()
}

// Profile returns the stored profile.
func (s *Store) Profile(ctx context.Context) (Profile, error) {
	var p Profile
	var about, summary string
	err := s.db.QueryRowContext(ctx, `
		SELECT name, role, email, site, tagline, about_html, summary_html FROM profile WHERE id = 1`,
	).Scan(&p.Name, &p.Role, &p.Email, &p.Site, &p.Tagline, &about, &summary)
	if err != nil {
		return Profile{}, fmt.Errorf("loading profile: %w", err)
	}
	p.AboutHTML = template.HTML(about)
	p.SummaryHTML = template.HTML(summary)
	return p, nil
}

// Projects returns the showcase projects in authored order.
func (s *Store) Projects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, title, summary_html, link, image, tags FROM projects ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		var summary, tags string
		if err := rows.Scan(&p.Slug, &p.Title, &summary, &p.Link, &p.Image, &tags); err != nil {
			return nil, err
		}
		p.SummaryHTML = template.HTML(summary)
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags for %s: %w", p.Slug, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Resume returns skills and sections in authored order.
func (s *Store) Resume(ctx context.Context) (Resume, error) {
	var r Resume

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM skills ORDER BY position`)
	if err != nil {
		return r, fmt.Errorf("loading skills: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return r, err
		}
		r.Skills = append(r.Skills, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return r, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT section_position, section_title, title, org, start_date, end_date, logo, bullets
		FROM resume_items ORDER BY section_position, position`)
	if err != nil {
		return r, fmt.Errorf("loading resume: %w", err)
	}
	defer rows.Close()

	current := -1
	for rows.Next() {
		var sec int
		var title, bullets string
		var it Item
		if err := rows.Scan(&sec, &title, &it.Title, &it.Org, &it.Start, &it.End, &it.Logo, &bullets); err != nil {
			return r, err
		}
		if err := json.Unmarshal([]byte(bullets), &it.Bullets); err != nil {
			return r, fmt.Errorf("decoding bullets for %q: %w", it.Title, err)
		}
		if sec != current {
			r.Sections = append(r.Sections, Section{Title: title})
			current = sec
		}
		last := &r.Sections[len(r.Sections)-1]
		last.Items = append(last.Items, it)
	}
	return r, rows.Err()
}

// Playlist returns the tracks in play order.
func (s *Store) Playlist(ctx context.Context) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title, src FROM tracks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading playlist: %w", err)
	}
	defer rows.Close()

	var out []Track
	for rows.Next() {
		var t Track
		if err := rows.Scan(&t.Title, &t.Src); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
