package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/leh60245/enterprise-storm/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.FragmentStore  = (*Store)(nil)
	_ driven.FragmentWriter = (*Store)(nil)
)

// dbFile is the database file name inside the data directory.
const dbFile = "storm.db"

// fragmentColumns is the column list scanned by scanFragment.
const fragmentColumns = `m.id, m.report_id, m.chunk_type, m.section_path, m.sequence_order,
	m.raw_content, m.table_metadata, m.embedding, m.metadata, m.created_at`

// Store is a SQLite fragment store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.storm/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".storm", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return domain.NewRepositoryError("ping", nil, s.db.PingContext(ctx))
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_schema.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Writer ====================

// SaveCompany upserts a company by name and sets its ID.
func (s *Store) SaveCompany(ctx context.Context, company *domain.Company) error {
	now := time.Now().UTC()
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	company.UpdatedAt = now

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO companies (company_name, corp_code, stock_code, industry, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(company_name) DO UPDATE SET
			corp_code = excluded.corp_code,
			stock_code = excluded.stock_code,
			industry = excluded.industry,
			updated_at = excluded.updated_at
		RETURNING id
	`, company.Name, company.CorpCode, company.StockCode, company.Industry,
		company.CreatedAt, company.UpdatedAt)

	if err := row.Scan(&company.ID); err != nil {
		return domain.NewRepositoryError("save_company", map[string]any{"name": company.Name}, err)
	}
	return nil
}

// SaveReport upserts a report by receipt number and sets its ID.
func (s *Store) SaveReport(ctx context.Context, report *domain.AnalysisReport) error {
	params := map[string]any{"rcept_no": report.ReceiptNo}

	basicInfo, err := marshalMap(report.BasicInfo)
	if err != nil {
		return domain.NewRepositoryError("save_report", params, err)
	}
	if report.ReportType == "" {
		report.ReportType = domain.DefaultReportType
	}
	if report.Status == "" {
		report.Status = domain.ReportStatusRawLoaded
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	var companyID sql.NullInt64
	if report.CompanyID != nil {
		companyID = sql.NullInt64{Int64: *report.CompanyID, Valid: true}
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO analysis_reports (company_id, title, rcept_no, rcept_dt, report_type, basic_info, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(rcept_no) DO UPDATE SET
			company_id = excluded.company_id,
			title = excluded.title,
			rcept_dt = excluded.rcept_dt,
			report_type = excluded.report_type,
			basic_info = excluded.basic_info,
			status = excluded.status
		RETURNING id
	`, companyID, report.Title, report.ReceiptNo, report.ReceiptDate, report.ReportType,
		basicInfo, string(report.Status), report.CreatedAt)

	if err := row.Scan(&report.ID); err != nil {
		return domain.NewRepositoryError("save_report", params, err)
	}
	return nil
}

// SaveFragments replaces the fragments of a report in one transaction
// and sets their IDs.
func (s *Store) SaveFragments(ctx context.Context, reportID int64, fragments []domain.Fragment) error {
	params := map[string]any{"report_id": reportID, "count": len(fragments)}
	fail := func(err error) error {
		return domain.NewRepositoryError("save_fragments", params, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM source_materials WHERE report_id = ?`, reportID); err != nil {
		return fail(err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO source_materials (report_id, chunk_type, section_path, sequence_order,
			raw_content, table_metadata, embedding, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fail(err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range fragments {
		f := &fragments[i]
		f.ReportID = reportID
		if !f.ChunkType.IsValid() {
			return fail(domain.NewValidationError("chunk_type", fmt.Sprintf("unknown type %q", f.ChunkType)))
		}
		tableMeta, err := marshalMap(f.TableMetadata)
		if err != nil {
			return fail(err)
		}
		meta, err := marshalMap(f.Metadata)
		if err != nil {
			return fail(err)
		}
		if f.CreatedAt.IsZero() {
			f.CreatedAt = now
		}

		res, err := stmt.ExecContext(ctx, f.ReportID, string(f.ChunkType), f.SectionPath, f.SequenceOrder,
			f.RawContent, tableMeta, float32SliceToBytes(f.Embedding), meta, f.CreatedAt)
		if err != nil {
			return fail(fmt.Errorf("fragment %d of report %d: %w", f.SequenceOrder, f.ReportID, err))
		}
		if f.ID, err = res.LastInsertId(); err != nil {
			return fail(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fail(err)
	}
	return nil
}

// ==================== Reader ====================

// SearchByVector loads the candidate rows matching q and ranks them by
// cosine distance to vec.
func (s *Store) SearchByVector(ctx context.Context, vec []float32, q driven.VectorQuery) ([]driven.VectorMatch, error) {
	params := map[string]any{"top_k": q.TopK, "companies": q.Companies, "chunk_type": q.ChunkType}
	if q.Companies != nil && len(q.Companies) == 0 {
		return []driven.VectorMatch{}, nil
	}

	query := `
		SELECT ` + fragmentColumns + `, COALESCE(c.company_name, '')
		FROM source_materials m
		JOIN analysis_reports r ON r.id = m.report_id
		LEFT JOIN companies c ON c.id = r.company_id
		WHERE m.chunk_type != ? AND m.embedding IS NOT NULL`
	args := []any{string(domain.ChunkTypeNoiseMerged)}

	if q.ChunkType != "" {
		query += " AND m.chunk_type = ?"
		args = append(args, string(q.ChunkType))
	}
	if q.Companies != nil {
		query += " AND c.company_name IN (" + placeholders(len(q.Companies)) + ")"
		for _, name := range q.Companies {
			args = append(args, name)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewRepositoryError("search_by_vector", params, err)
	}
	defer rows.Close()

	var matches []driven.VectorMatch //nolint:prealloc // size unknown from query
	for rows.Next() {
		var company string
		f, err := scanFragment(rows, &company)
		if err != nil {
			return nil, domain.NewRepositoryError("search_by_vector", params, err)
		}
		matches = append(matches, driven.VectorMatch{
			Fragment:    *f,
			CompanyName: company,
			Distance:    domain.CosineDistance(vec, f.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRepositoryError("search_by_vector", params, err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Fragment.ID < matches[j].Fragment.ID
	})
	if q.TopK > 0 && len(matches) > q.TopK {
		matches = matches[:q.TopK]
	}
	return matches, nil
}

// NearestNextFragment returns the first retrievable fragment after seq in
// the same report.
func (s *Store) NearestNextFragment(ctx context.Context, reportID int64, seq int) (*domain.Fragment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+fragmentColumns+`
		FROM source_materials m
		WHERE m.report_id = ? AND m.sequence_order > ? AND m.chunk_type != ?
		ORDER BY m.sequence_order ASC
		LIMIT 1
	`, reportID, seq, string(domain.ChunkTypeNoiseMerged))
	params := map[string]any{"report_id": reportID, "sequence_order": seq}
	if err != nil {
		return nil, domain.NewRepositoryError("nearest_next_fragment", params, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, domain.NewRepositoryError("nearest_next_fragment", params, err)
		}
		return nil, domain.ErrNotFound
	}
	f, err := scanFragment(rows)
	if err != nil {
		return nil, domain.NewRepositoryError("nearest_next_fragment", params, err)
	}
	return f, nil
}

// ContextWindow returns retrievable fragments within window of center,
// excluding center, in sequence order.
func (s *Store) ContextWindow(ctx context.Context, reportID int64, center, window int) ([]domain.Fragment, error) {
	return s.listFragments(ctx, "context_window",
		map[string]any{"report_id": reportID, "center": center, "window": window}, `
		WHERE m.report_id = ? AND m.sequence_order BETWEEN ? AND ?
			AND m.sequence_order != ? AND m.chunk_type != ?
		ORDER BY m.sequence_order ASC
	`, reportID, center-window, center+window, center, string(domain.ChunkTypeNoiseMerged))
}

// FragmentsByReport returns all fragments of a report in sequence order.
func (s *Store) FragmentsByReport(ctx context.Context, reportID int64) ([]domain.Fragment, error) {
	return s.listFragments(ctx, "fragments_by_report", map[string]any{"report_id": reportID}, `
		WHERE m.report_id = ?
		ORDER BY m.sequence_order ASC
	`, reportID)
}

func (s *Store) listFragments(
	ctx context.Context, op string, params map[string]any, where string, args ...any,
) ([]domain.Fragment, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+fragmentColumns+" FROM source_materials m "+where, args...)
	if err != nil {
		return nil, domain.NewRepositoryError(op, params, err)
	}
	defer rows.Close()

	fragments := []domain.Fragment{}
	for rows.Next() {
		f, err := scanFragment(rows)
		if err != nil {
			return nil, domain.NewRepositoryError(op, params, err)
		}
		fragments = append(fragments, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRepositoryError(op, params, err)
	}
	return fragments, nil
}

// CompanyNames returns the distinct company names, sorted.
func (s *Store) CompanyNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT company_name FROM companies
		WHERE company_name IS NOT NULL AND company_name != ''
		ORDER BY company_name
	`)
	if err != nil {
		return nil, domain.NewRepositoryError("company_names", nil, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, domain.NewRepositoryError("company_names", nil, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRepositoryError("company_names", nil, err)
	}
	return names, nil
}

// ==================== Helper Functions ====================

// placeholders returns n comma-separated "?" markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// marshalMap encodes a metadata map as JSON, "{}" for nil.
func marshalMap(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}
	return string(b), nil
}

// unmarshalMap decodes a JSON object, nil for empty objects.
func unmarshalMap(s string) (map[string]any, error) {
	if s == "" || s == "{}" || s == "null" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}
	return m, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanFragment scans one fragment row. Extra destinations are scanned
// after the fragment columns.
func scanFragment(rows *sql.Rows, extra ...any) (*domain.Fragment, error) {
	var f domain.Fragment
	var chunkType, tableMeta, meta string
	var embedding []byte

	dest := []any{&f.ID, &f.ReportID, &chunkType, &f.SectionPath, &f.SequenceOrder,
		&f.RawContent, &tableMeta, &embedding, &meta, &f.CreatedAt}
	if err := rows.Scan(append(dest, extra...)...); err != nil {
		return nil, fmt.Errorf("scanning fragment: %w", err)
	}

	f.ChunkType = domain.ChunkType(chunkType)
	f.Embedding = bytesToFloat32Slice(embedding)

	var err error
	if f.TableMetadata, err = unmarshalMap(tableMeta); err != nil {
		return nil, err
	}
	if f.Metadata, err = unmarshalMap(meta); err != nil {
		return nil, err
	}
	return &f, nil
}
