package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/coursepilot/backend/internal/models"
	"go.uber.org/zap"
)

type courseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCourseRepository creates a new instance of the CourseRepository interface
func NewCourseRepository(db *sql.DB, logger *zap.Logger) *courseRepository {
	return &courseRepository{
		db:     db,
		logger: logger,
	}
}

// Save inserts a course or replaces an existing one with the same id.
// Raw titles and the structure are stored as JSON
func (r *courseRepository) Save(ctx context.Context, course *models.Course) error {
	rawTitles, err := json.Marshal(course.RawTitles)
	if err != nil {
		return storageErr("save_course", "failed to encode raw titles", err)
	}

	var structure sql.NullString
	if course.Structure != nil {
		encoded, err := json.Marshal(course.Structure)
		if err != nil {
			return storageErr("save_course", "failed to encode structure", err)
		}
		structure = sql.NullString{String: string(encoded), Valid: true}
	}

	query := `
		INSERT INTO courses (id, name, created_at, raw_titles, structure)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name), raw_titles = VALUES(raw_titles), structure = VALUES(structure)
	`

	_, err = r.db.ExecContext(ctx, query, course.ID, course.Name, course.CreatedAt, rawTitles, structure)
	if err != nil && isTransient(err) {
		_, err = r.db.ExecContext(ctx, query, course.ID, course.Name, course.CreatedAt, rawTitles, structure)
	}
	if err != nil {
		r.logger.Error("failed to save course", zap.Error(err), zap.String("course_id", course.ID))
		return storageErr("save_course", "failed to save course", err)
	}

	return nil
}

// GetByID retrieves a course by its id. Returns nil when not found
func (r *courseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	query := `
		SELECT id, name, created_at, raw_titles, structure
		FROM courses
		WHERE id = ?
	`

	course, err := r.scanCourse(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("failed to query course", zap.Error(err), zap.String("course_id", id))
		return nil, storageErr("get_course", "failed to query course", err)
	}

	return course, nil
}

// GetAll retrieves every stored course ordered by creation time
func (r *courseRepository) GetAll(ctx context.Context) ([]models.Course, error) {
	query := `
		SELECT id, name, created_at, raw_titles, structure
		FROM courses
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query courses", zap.Error(err))
		return nil, storageErr("load_courses", "failed to query courses", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		course, err := r.scanCourse(rows)
		if err != nil {
			r.logger.Error("failed to scan course", zap.Error(err))
			return nil, storageErr("load_courses", "failed to scan course", err)
		}
		courses = append(courses, *course)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, storageErr("load_courses", "error iterating rows", err)
	}

	return courses, nil
}

// Delete removes a course. Plans and progress cascade via foreign keys
func (r *courseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete course", zap.Error(err), zap.String("course_id", id))
		return storageErr("delete_course", "failed to delete course", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("delete_course", "failed to read affected rows", err)
	}
	if affected == 0 {
		return fmt.Errorf("course not found: %s", id)
	}

	return nil
}

// GetNames returns all existing course names, used for unique naming
func (r *courseRepository) GetNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM courses`)
	if err != nil {
		r.logger.Error("failed to query course names", zap.Error(err))
		return nil, storageErr("get_names", "failed to query course names", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, storageErr("get_names", "failed to scan name", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("get_names", "error iterating rows", err)
	}

	return names, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *courseRepository) scanCourse(row rowScanner) (*models.Course, error) {
	var course models.Course
	var rawTitles []byte
	var structure sql.NullString

	if err := row.Scan(&course.ID, &course.Name, &course.CreatedAt, &rawTitles, &structure); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(rawTitles, &course.RawTitles); err != nil {
		return nil, fmt.Errorf("failed to decode raw titles: %w", err)
	}
	if structure.Valid {
		course.Structure = &models.CourseStructure{}
		if err := json.Unmarshal([]byte(structure.String), course.Structure); err != nil {
			return nil, fmt.Errorf("failed to decode structure: %w", err)
		}
	}

	return &course, nil
}
