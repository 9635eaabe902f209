package mongodb

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/model"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

// userDocument is the stored shape of a user. Identifiers are kept as
// canonical UUID strings.
type userDocument struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	FirstName string    `bson:"fname"`
	LastName  string    `bson:"lname"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type taskDocument struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	Status      string     `bson:"status"`
	DueDate     *time.Time `bson:"dueDate,omitempty"`
	Owner       string     `bson:"owner"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

func newUserDocument(u *model.User) userDocument {
	return userDocument{
		ID:        u.ID.String(),
		Email:     u.Email,
		Password:  u.PasswordHash,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (d userDocument) toModel() (*model.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", d.ID, err)
	}
	return &model.User{
		ID:           id,
		Email:        d.Email,
		PasswordHash: d.Password,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func newTaskDocument(t *model.Task) taskDocument {
	return taskDocument{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		Owner:       t.OwnerID.String(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d taskDocument) toModel() (*model.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse task id %q: %w", d.ID, err)
	}
	owner, err := uuid.Parse(d.Owner)
	if err != nil {
		return nil, fmt.Errorf("parse task owner %q: %w", d.Owner, err)
	}
	return &model.Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Status:      model.TaskStatus(d.Status),
		DueDate:     d.DueDate,
		OwnerID:     owner,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}
