package history

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/schema"
)

func newMemStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(afero.NewMemMapFs(), "models", "migrations")
	require.NoError(t, s.EnsureLayout())
	return s
}

func TestPlanFileName(t *testing.T) {
	tests := []struct {
		name    string
		version uint32
		comment *string
		want    string
	}{
		{"sanitized comment", 1, schema.StringPtr("Add Users Table!"), "0001_add_users_table.json"},
		{"no comment", 2, nil, "0002_migration.json"},
		{"symbols only", 3, schema.StringPtr("!!!"), "0003_migration.json"},
		{"wide version", 123, schema.StringPtr("drop legacy"), "0123_drop_legacy.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanFileName(migrate.Plan{Version: tt.version, Comment: tt.comment})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSavePlanRoundTrip(t *testing.T) {
	s := newMemStore(t)
	plan := migrate.Plan{
		Version: 1,
		Comment: schema.StringPtr("create users"),
		Actions: []migrate.Action{
			migrate.CreateTable{
				Table: "users",
				Columns: []schema.Column{
					{Name: "id", Type: schema.Simple(schema.TypeBigInt)},
				},
				Constraints: []schema.Constraint{schema.PrimaryKey(true, "id")},
			},
		},
	}

	name, err := s.SavePlan(plan)
	require.NoError(t, err)
	assert.Equal(t, "0001_create_users.json", name)

	plans, err := s.LoadPlans()
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, plan, plans[0])
}

func TestSavePlanRefusesOverwrite(t *testing.T) {
	s := newMemStore(t)
	plan := migrate.Plan{Version: 1, Comment: schema.StringPtr("init")}

	_, err := s.SavePlan(plan)
	require.NoError(t, err)

	_, err = s.SavePlan(plan)
	require.Error(t, err)
	assert.EqualError(t, err, "migration file already exists: 0001_init.json")
}

func TestPlanFilesSortNumerically(t *testing.T) {
	s := newMemStore(t)
	// Version 9 sorts before 10 even though "9" > "10" lexically.
	for _, name := range []string{"10_second.json", "9_first.json", "0002_oldest.json"} {
		require.NoError(t, afero.WriteFile(s.fs, filepath.Join("migrations", name),
			[]byte(`{"version":0,"actions":[]}`), 0o644))
	}
	// Files without a numeric prefix or a .json suffix are ignored.
	require.NoError(t, afero.WriteFile(s.fs, filepath.Join("migrations", "notes.json"), []byte("{}"), 0o644))
	require.NoError(t, afero.WriteFile(s.fs, filepath.Join("migrations", "0001_readme.md"), []byte("#"), 0o644))

	names, err := s.PlanFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_oldest.json", "9_first.json", "10_second.json"}, names)
}

func TestLoadPlansVersionFallback(t *testing.T) {
	s := newMemStore(t)
	require.NoError(t, afero.WriteFile(s.fs, filepath.Join("migrations", "0007_legacy.json"),
		[]byte(`{"version":0,"actions":[]}`), 0o644))

	plans, err := s.LoadPlans()
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, uint32(7), plans[0].Version)
}

func TestLoadPlansParseError(t *testing.T) {
	s := newMemStore(t)
	require.NoError(t, afero.WriteFile(s.fs, filepath.Join("migrations", "0001_bad.json"),
		[]byte("{"), 0o644))

	_, err := s.LoadPlans()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse migration 0001_bad.json")
}

func TestParseModelFormat(t *testing.T) {
	f, err := ParseModelFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseModelFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseModelFormat("toml")
	assert.EqualError(t, err, "unsupported model format: toml")
}

func TestSaveAndLoadModels(t *testing.T) {
	s := newMemStore(t)
	users := schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: schema.Simple(schema.TypeBigInt), PrimaryKey: &schema.PrimaryKeySpec{Enabled: true, AutoIncrement: true}},
			{Name: "email", Type: schema.Varchar(255), Unique: schema.BoolShorthand(true)},
		},
	}
	posts := schema.Table{
		Name: "posts",
		Columns: []schema.Column{
			{Name: "id", Type: schema.Simple(schema.TypeBigInt)},
			{Name: "title", Type: schema.Varchar(200)},
		},
		Constraints: []schema.Constraint{schema.PrimaryKey(false, "id")},
	}

	name, err := s.SaveModel(users, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "users.json", name)

	name, err = s.SaveModel(posts, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "posts.yaml", name)

	tables, err := s.LoadModels()
	require.NoError(t, err)
	require.Len(t, tables, 2)
	// Sorted by file name, so posts.yaml comes first.
	assert.Equal(t, posts, tables[0])
	assert.Equal(t, users, tables[1])
}

func TestLoadModelsHandwrittenYAML(t *testing.T) {
	s := newMemStore(t)
	doc := `name: tags
columns:
  - name: id
    type: bigint
    primary_key: true
  - name: label
    type:
      varchar:
        length: 50
`
	require.NoError(t, afero.WriteFile(s.fs, filepath.Join("models", "tags.yml"), []byte(doc), 0o644))

	tables, err := s.LoadModels()
	require.NoError(t, err)
	require.Len(t, tables, 1)
	require.Len(t, tables[0].Columns, 2)
	assert.Equal(t, "tags", tables[0].Name)
	assert.NotNil(t, tables[0].Columns[0].PrimaryKey)
	assert.Equal(t, schema.Varchar(50), tables[0].Columns[1].Type)
}

func TestLoadModelsIgnoresOtherFiles(t *testing.T) {
	s := newMemStore(t)
	require.NoError(t, afero.WriteFile(s.fs, filepath.Join("models", "README.md"), []byte("#"), 0o644))

	tables, err := s.LoadModels()
	require.NoError(t, err)
	assert.Empty(t, tables)
}
