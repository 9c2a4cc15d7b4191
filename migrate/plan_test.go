package migrate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaplan/schemaplan/schema"
)

func TestPlanJSONRoundTrip(t *testing.T) {
	comment := "add posts"
	uq := "uq_slug"
	fill := "''"
	plan := Plan{
		Comment: &comment,
		Version: 3,
		Actions: []Action{
			CreateTable{
				Table: "posts",
				Columns: []schema.Column{
					{Name: "id", Type: schema.Simple(schema.TypeBigInt)},
					{Name: "slug", Type: schema.Varchar(120)},
				},
				Constraints: []schema.Constraint{
					schema.PrimaryKey(true, "id"),
					schema.Unique(&uq, "slug"),
				},
			},
			AddColumn{
				Table:    "posts",
				Column:   schema.Column{Name: "body", Type: schema.Simple(schema.TypeText)},
				FillWith: &fill,
			},
			ModifyColumnNullable{Table: "posts", Column: "body", Nullable: true},
			RemoveIndex{Table: "posts", Name: "idx_posts_slug"},
			RenameTable{From: "posts", To: "articles"},
			RawSQL{SQL: "ANALYZE"},
		},
	}

	data, err := json.Marshal(plan)
	require.NoError(t, err)

	var back Plan
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, plan, back)
}

func TestActionEnvelopeTags(t *testing.T) {
	data, err := MarshalAction(DeleteTable{Table: "users"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"delete_table","table":"users"}`, string(data))

	action, err := UnmarshalAction(data)
	require.NoError(t, err)
	assert.Equal(t, DeleteTable{Table: "users"}, action)
}

func TestUnmarshalActionUnknownType(t *testing.T) {
	_, err := UnmarshalAction([]byte(`{"type":"explode"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explode")
}
