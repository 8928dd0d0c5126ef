package mongo

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskhub/task-manager/internal/core/ports"
)

func neutralFilter(ownerID string) ports.ListTasksFilter {
	return ports.ListTasksFilter{OwnerID: ownerID, Limit: -1, Skip: -1}
}

func TestListFilter(t *testing.T) {
	owner := primitive.NewObjectID()

	got := listFilter(owner, neutralFilter(owner.Hex()))
	if !reflect.DeepEqual(got, bson.M{"owner_id": owner}) {
		t.Fatalf("expected owner-only filter, got %v", got)
	}

	done := true
	f := neutralFilter(owner.Hex())
	f.Completed = &done
	got = listFilter(owner, f)
	if !reflect.DeepEqual(got, bson.M{"owner_id": owner, "completed": true}) {
		t.Fatalf("expected completion filter, got %v", got)
	}
}

func TestListOptions_Neutral(t *testing.T) {
	opts := listOptions(neutralFilter("ignored"))

	if opts.Sort != nil {
		t.Fatalf("expected no sort, got %v", opts.Sort)
	}
	if opts.Limit != nil || opts.Skip != nil {
		t.Fatalf("expected unset pagination, got limit=%v skip=%v", opts.Limit, opts.Skip)
	}
}

func TestListOptions_Sort(t *testing.T) {
	cases := []struct {
		name  string
		field string
		desc  bool
		want  bson.D
	}{
		{"mapped field ascending", "createdAt", false, bson.D{{Key: "created_at", Value: 1}}},
		{"mapped field descending", "createdAt", true, bson.D{{Key: "created_at", Value: -1}}},
		{"id maps to _id", "id", false, bson.D{{Key: "_id", Value: 1}}},
		{"owner maps to owner_id", "owner", true, bson.D{{Key: "owner_id", Value: -1}}},
		{"unknown field passes through", "priority", false, bson.D{{Key: "priority", Value: 1}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := neutralFilter("ignored")
			f.SortField = tc.field
			f.SortDesc = tc.desc

			opts := listOptions(f)
			if !reflect.DeepEqual(opts.Sort, tc.want) {
				t.Fatalf("expected sort %v, got %v", tc.want, opts.Sort)
			}
		})
	}
}

func TestListOptions_Pagination(t *testing.T) {
	f := neutralFilter("ignored")
	f.Limit = 10
	f.Skip = 20

	opts := listOptions(f)
	if opts.Limit == nil || *opts.Limit != 10 {
		t.Fatalf("expected limit 10, got %v", opts.Limit)
	}
	if opts.Skip == nil || *opts.Skip != 20 {
		t.Fatalf("expected skip 20, got %v", opts.Skip)
	}

	// Zero is a real value: limit=0 returns everything in MongoDB, skip=0 is
	// the first page. Only negatives mean unset.
	f.Limit = 0
	f.Skip = 0
	opts = listOptions(f)
	if opts.Limit == nil || *opts.Limit != 0 {
		t.Fatalf("expected explicit limit 0, got %v", opts.Limit)
	}
	if opts.Skip == nil || *opts.Skip != 0 {
		t.Fatalf("expected explicit skip 0, got %v", opts.Skip)
	}
}
