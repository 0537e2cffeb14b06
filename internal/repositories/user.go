package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/desertthunder/moviweb/internal/models"
)

// GetAllUsers returns every user ordered by ID, each with their movies attached.
func (m *SQLiteDataManager) GetAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, name FROM User ORDER BY id`)
	if err != nil {
		return nil, m.fail("list users", err)
	}
	defer rows.Close()

	users := []models.User{}
	index := map[int]int{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, m.fail("scan user", err)
		}
		u.Movies = []models.Movie{}
		index[u.ID] = len(users)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, m.fail("iterate users", err)
	}

	movies, err := m.queryMovies(ctx, `SELECT `+movieColumns+` FROM Movie ORDER BY user_id, movie_id`)
	if err != nil {
		return nil, err
	}
	for _, mv := range movies {
		if i, ok := index[mv.UserID]; ok {
			users[i].Movies = append(users[i].Movies, mv)
		}
	}

	return users, nil
}

// GetUser returns one user with their movies.
func (m *SQLiteDataManager) GetUser(ctx context.Context, userID int) (*models.User, error) {
	user, err := m.getUserRow(ctx, userID)
	if err != nil {
		return nil, err
	}

	movies, err := m.queryMovies(ctx, `SELECT `+movieColumns+` FROM Movie WHERE user_id = ? ORDER BY movie_id`, userID)
	if err != nil {
		return nil, err
	}
	user.Movies = movies
	return user, nil
}

// NextUserID always reports [models.AutoID]; the database assigns user IDs on insert.
func (m *SQLiteDataManager) NextUserID(ctx context.Context) (int, error) {
	return models.AutoID, nil
}

// AddUser inserts a user and returns it with the assigned ID.
func (m *SQLiteDataManager) AddUser(ctx context.Context, name string) (*models.User, error) {
	user := models.NewUser(models.AutoID, name)
	if err := user.Validate(); err != nil {
		return nil, err
	}

	result, err := m.db.ExecContext(ctx, `INSERT INTO User (name) VALUES (?)`, user.Name)
	if err != nil {
		return nil, m.fail("insert user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, m.fail("read user id", err)
	}
	user.ID = int(id)

	m.logger.Debug("added user", "user_id", user.ID)
	return user, nil
}

// UpdateUser renames a user.
func (m *SQLiteDataManager) UpdateUser(ctx context.Context, userID int, name string) (*models.User, error) {
	renamed := models.NewUser(userID, name)
	if err := renamed.Validate(); err != nil {
		return nil, err
	}

	result, err := m.db.ExecContext(ctx, `UPDATE User SET name = ? WHERE id = ?`, renamed.Name, userID)
	if err != nil {
		return nil, m.fail("update user", err, "user_id", userID)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return nil, m.fail("update user", err, "user_id", userID)
	}
	if n == 0 {
		return nil, userNotFound(userID)
	}

	return m.GetUser(ctx, userID)
}

// DeleteUser removes a user. Their movies and reviews go with them via ON DELETE CASCADE.
func (m *SQLiteDataManager) DeleteUser(ctx context.Context, userID int) (*models.User, error) {
	user, err := m.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := m.db.ExecContext(ctx, `DELETE FROM User WHERE id = ?`, userID)
	if err != nil {
		return nil, m.fail("delete user", err, "user_id", userID)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return nil, m.fail("delete user", err, "user_id", userID)
	}
	if n == 0 {
		return nil, userNotFound(userID)
	}

	m.logger.Debug("deleted user", "user_id", userID, "movies", len(user.Movies))
	return user, nil
}

func (m *SQLiteDataManager) getUserRow(ctx context.Context, userID int) (*models.User, error) {
	var u models.User
	err := m.db.QueryRowContext(ctx, `SELECT id, name FROM User WHERE id = ?`, userID).Scan(&u.ID, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, userNotFound(userID)
	}
	if err != nil {
		return nil, m.fail("get user", err, "user_id", userID)
	}
	u.Movies = []models.Movie{}
	return &u, nil
}
