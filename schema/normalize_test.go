package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrimaryKeyShorthand(t *testing.T) {
	table := Table{
		Name: "users",
		Columns: []Column{
			{Name: "id", Type: Simple(TypeBigInt), PrimaryKey: &PrimaryKeySpec{Enabled: true, AutoIncrement: true}},
			{Name: "email", Type: Varchar(255)},
		},
	}

	norm, err := table.Normalize()
	require.NoError(t, err)

	pk := norm.PrimaryKeyConstraint()
	require.NotNil(t, pk)
	assert.Equal(t, []string{"id"}, pk.Columns)
	assert.True(t, pk.AutoIncrement)

	// The marker stays on the column.
	require.NotNil(t, norm.Columns[0].PrimaryKey)
}

func TestNormalizeCompositePrimaryKey(t *testing.T) {
	table := Table{
		Name: "memberships",
		Columns: []Column{
			{Name: "user_id", Type: Simple(TypeBigInt), PrimaryKey: &PrimaryKeySpec{Enabled: true}},
			{Name: "team_id", Type: Simple(TypeBigInt), PrimaryKey: &PrimaryKeySpec{Enabled: true}},
		},
	}

	norm, err := table.Normalize()
	require.NoError(t, err)

	pk := norm.PrimaryKeyConstraint()
	require.NotNil(t, pk)
	assert.Equal(t, []string{"user_id", "team_id"}, pk.Columns)
	assert.False(t, pk.AutoIncrement)
}

func TestNormalizeExistingPrimaryKeyWins(t *testing.T) {
	table := Table{
		Name: "users",
		Columns: []Column{
			{Name: "id", Type: Simple(TypeBigInt), PrimaryKey: &PrimaryKeySpec{Enabled: true}},
		},
		Constraints: []Constraint{PrimaryKey(false, "id")},
	}

	norm, err := table.Normalize()
	require.NoError(t, err)

	count := 0
	for _, c := range norm.Constraints {
		if c.Kind == ConstraintPrimaryKey {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestNormalizeUniqueShorthand(t *testing.T) {
	t.Run("bool creates unnamed single column constraint", func(t *testing.T) {
		table := Table{
			Name: "users",
			Columns: []Column{
				{Name: "id", Type: Simple(TypeBigInt), PrimaryKey: &PrimaryKeySpec{Enabled: true}},
				{Name: "email", Type: Varchar(255), Unique: BoolShorthand(true)},
			},
		}
		norm, err := table.Normalize()
		require.NoError(t, err)
		require.Len(t, norm.Constraints, 2)
		assert.Equal(t, Unique(nil, "email"), norm.Constraints[1])
	})

	t.Run("named shorthand merges columns across the table", func(t *testing.T) {
		name := "uq_route"
		table := Table{
			Name: "routes",
			Columns: []Column{
				{Name: "id", Type: Simple(TypeBigInt), PrimaryKey: &PrimaryKeySpec{Enabled: true}},
				{Name: "provider", Type: Simple(TypeText), Unique: NameShorthand(name)},
				{Name: "external_id", Type: Simple(TypeText), Unique: NameShorthand(name)},
			},
		}
		norm, err := table.Normalize()
		require.NoError(t, err)
		require.Len(t, norm.Constraints, 2)
		assert.Equal(t, Unique(&name, "provider", "external_id"), norm.Constraints[1])
	})

	t.Run("name colliding with another constraint kind errors", func(t *testing.T) {
		name := "clash"
		table := Table{
			Name: "users",
			Columns: []Column{
				{Name: "id", Type: Simple(TypeBigInt), PrimaryKey: &PrimaryKeySpec{Enabled: true}},
				{Name: "email", Type: Varchar(255), Unique: NameShorthand(name)},
			},
			Constraints: []Constraint{Check(name, "email <> ''")},
		}
		_, err := table.Normalize()
		var dup *DuplicateConstraintError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "clash", dup.Name)
	})
}

func TestNormalizeForeignKeyShorthand(t *testing.T) {
	table := Table{
		Name: "posts",
		Columns: []Column{
			{Name: "id", Type: Simple(TypeBigInt), PrimaryKey: &PrimaryKeySpec{Enabled: true}},
			{
				Name: "author_id",
				Type: Simple(TypeBigInt),
				ForeignKey: &ForeignKeyRef{
					RefTable:   "users",
					RefColumns: []string{"id"},
				},
			},
		},
	}

	norm, err := table.Normalize()
	require.NoError(t, err)
	require.Len(t, norm.Constraints, 2)

	fk := norm.Constraints[1]
	assert.Equal(t, ConstraintForeignKey, fk.Kind)
	assert.Equal(t, []string{"author_id"}, fk.Columns)
	assert.Equal(t, "users", fk.RefTable)
	assert.Equal(t, []string{"id"}, fk.RefColumns)
}

func TestNormalizeIndexShorthand(t *testing.T) {
	t.Run("bool derives a default name", func(t *testing.T) {
		table := Table{
			Name: "events",
			Columns: []Column{
				{Name: "id", Type: Simple(TypeBigInt), PrimaryKey: &PrimaryKeySpec{Enabled: true}},
				{Name: "created_at", Type: Simple(TypeTimestamptz), Index: BoolShorthand(true)},
			},
		}
		norm, err := table.Normalize()
		require.NoError(t, err)
		name := DefaultIndexName("events", "created_at")
		last := norm.Constraints[len(norm.Constraints)-1]
		assert.Equal(t, Index(&name, "created_at"), last)
	})

	t.Run("shared name groups columns in first occurrence order", func(t *testing.T) {
		table := Table{
			Name: "events",
			Columns: []Column{
				{Name: "id", Type: Simple(TypeBigInt), PrimaryKey: &PrimaryKeySpec{Enabled: true}},
				{Name: "kind", Type: Simple(TypeText), Index: NameShorthand("ix_lookup")},
				{Name: "created_at", Type: Simple(TypeTimestamptz), Index: NameShorthand("ix_lookup")},
			},
		}
		norm, err := table.Normalize()
		require.NoError(t, err)
		last := norm.Constraints[len(norm.Constraints)-1]
		assert.Equal(t, []string{"kind", "created_at"}, last.Columns)
	})

	t.Run("name collision with non-index constraint errors", func(t *testing.T) {
		name := "taken"
		table := Table{
			Name: "events",
			Columns: []Column{
				{Name: "id", Type: Simple(TypeBigInt), PrimaryKey: &PrimaryKeySpec{Enabled: true}},
				{Name: "kind", Type: Simple(TypeText), Index: NameShorthand(name)},
			},
			Constraints: []Constraint{Unique(&name, "kind")},
		}
		_, err := table.Normalize()
		var dup *DuplicateIndexError
		require.ErrorAs(t, err, &dup)
	})
}

func TestNormalizeIsIdempotent(t *testing.T) {
	onDelete := ActionCascade
	table := Table{
		Name: "posts",
		Columns: []Column{
			{Name: "id", Type: Simple(TypeBigInt), PrimaryKey: &PrimaryKeySpec{Enabled: true, AutoIncrement: true}},
			{Name: "slug", Type: Varchar(120), Unique: BoolShorthand(true)},
			{Name: "kind", Type: Simple(TypeText), Index: BoolShorthand(true)},
			{
				Name: "author_id",
				Type: Simple(TypeBigInt),
				ForeignKey: &ForeignKeyRef{
					RefTable:   "users",
					RefColumns: []string{"id"},
					OnDelete:   &onDelete,
				},
			},
		},
	}

	once, err := table.Normalize()
	require.NoError(t, err)
	twice, err := once.Normalize()
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	table := Table{
		Name: "users",
		Columns: []Column{
			{Name: "id", Type: Simple(TypeBigInt), PrimaryKey: &PrimaryKeySpec{Enabled: true}},
			{Name: "email", Type: Varchar(255), Unique: BoolShorthand(true)},
		},
	}

	_, err := table.Normalize()
	require.NoError(t, err)
	assert.Empty(t, table.Constraints)
}
