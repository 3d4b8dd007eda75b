package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/profilehub/internal/domain/user"
	"github.com/geocoder89/profilehub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// password_hash is left out on purpose; only GetByEmail selects it.
const publicColumns = `id, name, email, role, education, skills, projects, work, links, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	var u user.User

	education := ""
	if nu.Education != nil {
		education = *nu.Education
	}

	projects, err := json.Marshal(nonNilProjects(nu.Projects))
	if err != nil {
		return user.User{}, fmt.Errorf("encode projects: %w", err)
	}

	err = r.prom.ObserveDB("users.create", func() error {
		row := r.pool.QueryRow(ctx,
			`INSERT INTO users (id, name, email, password_hash, role, education, skills, projects, work, links)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)
			RETURNING `+publicColumns,
			uuid.NewString(),
			nu.Name,
			user.NormalizeEmail(nu.Email),
			nu.PasswordHash,
			nu.Role,
			education,
			nonNil(nu.Skills),
			string(projects),
			nonNil(nu.Work),
			nonNil(nu.Links),
		)
		return scanUser(row, &u)
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_email", func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT `+publicColumns+`, password_hash
			FROM users
			WHERE email = $1`,
			user.NormalizeEmail(email),
		)
		return scanUser(row, &u, &u.PasswordHash)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}

	var u user.User

	err := r.prom.ObserveDB("users.get_by_id", func() error {
		row := r.pool.QueryRow(ctx, `SELECT `+publicColumns+` FROM users WHERE id = $1`, id)
		return scanUser(row, &u)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// Update pushes the patch down as one statement; NULL parameters keep the
// stored column.
func (r *UsersRepo) Update(ctx context.Context, id string, patch user.Patch) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}

	var email *string
	if patch.Email != nil {
		e := user.NormalizeEmail(*patch.Email)
		email = &e
	}

	var projects *string
	if patch.Projects != nil {
		b, err := json.Marshal(nonNilProjects(*patch.Projects))
		if err != nil {
			return user.User{}, fmt.Errorf("encode projects: %w", err)
		}
		s := string(b)
		projects = &s
	}

	var u user.User

	err := r.prom.ObserveDB("users.update", func() error {
		row := r.pool.QueryRow(ctx,
			`UPDATE users
			SET name = COALESCE($2, name),
				email = COALESCE($3, email),
				education = COALESCE($4, education),
				skills = COALESCE($5::text[], skills),
				projects = COALESCE($6::jsonb, projects),
				work = COALESCE($7::text[], work),
				links = COALESCE($8::text[], links),
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+publicColumns,
			id,
			patch.Name,
			email,
			patch.Education,
			sliceOrNil(patch.Skills),
			projects,
			sliceOrNil(patch.Work),
			sliceOrNil(patch.Links),
		)
		return scanUser(row, &u)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) ListByRole(ctx context.Context, role string, page user.PageRequest) ([]user.User, int, error) {
	return r.list(ctx, "users.list_by_role", `role = $1`, []any{role}, page)
}

// ListBySkills matches users holding any of the given skills.
func (r *UsersRepo) ListBySkills(ctx context.Context, skills []string, page user.PageRequest) ([]user.User, int, error) {
	return r.list(ctx, "users.list_by_skills", `skills && $1::text[]`, []any{skills}, page)
}

func (r *UsersRepo) Search(ctx context.Context, query string, page user.PageRequest) ([]user.User, int, error) {
	cond := `name ILIKE $1
		OR education ILIKE $1
		OR EXISTS (SELECT 1 FROM unnest(skills) AS s WHERE s ILIKE $1)
		OR EXISTS (
			SELECT 1 FROM jsonb_array_elements(projects) AS p
			WHERE p->>'title' ILIKE $1 OR p->>'desc' ILIKE $1
		)`

	return r.list(ctx, "users.search", cond, []any{ContainsPattern(query)}, page)
}

// TopSkills counts occurrences, not distinct users. Equal counts are ordered
// by skill so the cut at limit is stable.
func (r *UsersRepo) TopSkills(ctx context.Context, limit int) ([]user.SkillCount, error) {
	out := make([]user.SkillCount, 0, limit)

	err := r.prom.ObserveDB("users.top_skills", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT skill, COUNT(*)::int AS n
			FROM users, unnest(skills) AS skill
			GROUP BY skill
			ORDER BY n DESC, skill ASC
			LIMIT $1`,
			limit,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var sc user.SkillCount
			if err := rows.Scan(&sc.Skill, &sc.Count); err != nil {
				return err
			}
			out = append(out, sc)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// list sends the page query and the count in one batch so an out of range
// page still reports the real total.
func (r *UsersRepo) list(ctx context.Context, op, where string, args []any, page user.PageRequest) ([]user.User, int, error) {
	n := len(args)
	pageArgs := append(append([]any{}, args...), page.Limit, page.Offset())

	output := make([]user.User, 0, page.Limit)
	total := 0

	err := r.prom.ObserveDB(op, func() error {
		batch := &pgx.Batch{}
		batch.Queue(
			`SELECT `+publicColumns+` FROM users WHERE `+where+
				fmt.Sprintf(` ORDER BY seq ASC LIMIT $%d OFFSET $%d`, n+1, n+2),
			pageArgs...,
		)
		batch.Queue(`SELECT COUNT(*) FROM users WHERE `+where, args...)

		br := r.pool.SendBatch(ctx, batch)
		defer br.Close()

		rows, err := br.Query()
		if err != nil {
			return err
		}
		for rows.Next() {
			var u user.User
			if err := scanUser(rows, &u); err != nil {
				rows.Close()
				return err
			}
			output = append(output, u)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		return br.QueryRow().Scan(&total)
	})

	if err != nil {
		return nil, 0, err
	}
	return output, total, nil
}

func scanUser(row pgx.Row, u *user.User, extra ...any) error {
	dest := []any{
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.Education,
		&u.Skills,
		&u.Projects,
		&u.Work,
		&u.Links,
		&u.CreatedAt,
		&u.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	*u = u.Normalize()
	return nil
}

// ContainsPattern turns free text into an ILIKE pattern that matches it
// literally anywhere in the column.
func ContainsPattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilProjects(in []user.Project) []user.Project {
	if in == nil {
		return []user.Project{}
	}
	return in
}

// sliceOrNil yields an untyped nil so the driver sends NULL.
func sliceOrNil(p *[]string) any {
	if p == nil {
		return nil
	}
	return nonNil(*p)
}
