package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskhub/task-manager/internal/core/domain"
	"github.com/taskhub/task-manager/internal/core/ports"
)

const collectionTasks = "tasks"

type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Description string             `bson:"description"`
	Completed   bool               `bson:"completed"`
	OwnerID     primitive.ObjectID `bson:"owner_id"`
	Image       []byte             `bson:"image,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *taskDoc) toDomain() *domain.Task {
	return &domain.Task{
		ID:          d.ID.Hex(),
		Description: d.Description,
		Completed:   d.Completed,
		OwnerID:     d.OwnerID.Hex(),
		Image:       d.Image,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// sortFields maps the attribute names clients use in orderBy to their bson
// keys. Unknown names are passed through untouched; sorting by a field that
// does not exist is a no-op for MongoDB.
var sortFields = map[string]string{
	"id":          "_id",
	"description": "description",
	"completed":   "completed",
	"owner":       "owner_id",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

func sortKey(field string) string {
	if key, ok := sortFields[field]; ok {
		return key
	}
	return field
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ownerOID, err := primitive.ObjectIDFromHex(t.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	doc := taskDoc{
		Description: t.Description,
		Completed:   t.Completed,
		OwnerID:     ownerOID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *TaskRepository) FindByOwner(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, filter)
}

func (r *TaskRepository) findOne(ctx context.Context, filter bson.M) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) List(ctx context.Context, f ports.ListTasksFilter) ([]*domain.Task, error) {
	ownerOID, err := primitive.ObjectIDFromHex(f.OwnerID)
	if err != nil {
		return []*domain.Task{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, listFilter(ownerOID, f), listOptions(f))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cur.Close(ctx)

	tasks := []*domain.Task{}
	for cur.Next(ctx) {
		var doc taskDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		tasks = append(tasks, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	ownerOID, err := primitive.ObjectIDFromHex(t.OwnerID)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := taskDoc{
		ID:          oid,
		Description: t.Description,
		Completed:   t.Completed,
		OwnerID:     ownerOID,
		Image:       t.Image,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	}

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid, "owner_id": ownerOID}, doc)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrTaskNotFound
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDoc
	if err := r.col.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("delete task: %w", err)
	}
	return doc.toDomain(), nil
}

// DeleteByOwner collects the ids before the bulk delete so callers can drop
// per-task derived state, such as cached images.
func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ownerOID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"owner_id": ownerOID}

	cur, err := r.col.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("find tasks by owner: %w", err)
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode task id: %w", err)
		}
		ids = append(ids, doc.ID.Hex())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("find tasks by owner: %w", err)
	}

	if _, err := r.col.DeleteMany(ctx, filter); err != nil {
		return nil, fmt.Errorf("delete tasks by owner: %w", err)
	}
	return ids, nil
}

// EnsureIndexes creates the owner-scoping indexes on the tasks collection.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// listFilter builds the query document for a task listing: always scoped to
// the owner, optionally narrowed by completion state.
func listFilter(ownerOID primitive.ObjectID, f ports.ListTasksFilter) bson.M {
	filter := bson.M{"owner_id": ownerOID}
	if f.Completed != nil {
		filter["completed"] = *f.Completed
	}
	return filter
}

// listOptions translates sort and pagination into find options. Negative
// limit/skip mean unset and leave the corresponding option untouched.
func listOptions(f ports.ListTasksFilter) *options.FindOptions {
	opts := options.Find()
	if f.SortField != "" {
		dir := 1
		if f.SortDesc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: sortKey(f.SortField), Value: dir}})
	}
	if f.Limit >= 0 {
		opts.SetLimit(f.Limit)
	}
	if f.Skip >= 0 {
		opts.SetSkip(f.Skip)
	}
	return opts
}

// ownedFilter builds the id+owner filter shared by the scoped lookups.
// A malformed id behaves exactly like a miss.
func ownedFilter(id, ownerID string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	ownerOID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	return bson.M{"_id": oid, "owner_id": ownerOID}, nil
}
