package sqlgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/schema"
)

func TestNewGenerator(t *testing.T) {
	g, err := NewGenerator("postgresql")
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, g.Dialect())

	_, err = NewGenerator("mssql")
	require.Error(t, err)
}

func TestActionSQLDeleteTableDropsEnumTypes(t *testing.T) {
	current := []schema.Table{{
		Name: "tasks",
		Columns: []schema.Column{
			{Name: "status", Type: schema.StringEnum("status", "open", "done")},
		},
	}}

	stmts, err := NewGeneratorFor(DialectPostgres).ActionSQL(migrate.DeleteTable{Table: "tasks"}, current)
	require.NoError(t, err)
	assert.Equal(t, []string{`DROP TABLE "tasks"`, `DROP TYPE IF EXISTS "tasks_status"`}, stmts)

	stmts, err = NewGeneratorFor(DialectSQLite).ActionSQL(migrate.DeleteTable{Table: "tasks"}, current)
	require.NoError(t, err)
	assert.Equal(t, []string{`DROP TABLE "tasks"`}, stmts)
}

func TestActionSQLRenameTable(t *testing.T) {
	action := migrate.RenameTable{From: "users", To: "accounts"}

	stmts, err := NewGeneratorFor(DialectMySQL).ActionSQL(action, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"RENAME TABLE `users` TO `accounts`"}, stmts)

	stmts, err = NewGeneratorFor(DialectPostgres).ActionSQL(action, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{`ALTER TABLE "users" RENAME TO "accounts"`}, stmts)
}

func TestActionSQLRawSQL(t *testing.T) {
	stmts, err := NewGeneratorFor(DialectPostgres).ActionSQL(migrate.RawSQL{SQL: "VACUUM"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"VACUUM"}, stmts)
}

func TestPlanSQLReplaysSchema(t *testing.T) {
	// The second action requires current schema information that only
	// exists once the first action has been replayed onto the baseline.
	plan := migrate.Plan{Version: 1, Actions: []migrate.Action{
		migrate.CreateTable{
			Table: "users",
			Columns: []schema.Column{
				{Name: "id", Type: schema.Simple(schema.TypeBigInt)},
			},
			Constraints: []schema.Constraint{schema.PrimaryKey(true, "id")},
		},
		migrate.AddColumn{
			Table:    "users",
			Column:   schema.Column{Name: "email", Type: schema.Varchar(255)},
			FillWith: schema.StringPtr("''"),
		},
	}}

	out, err := NewGeneratorFor(DialectSQLite).PlanSQL(plan, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Len(t, out[0], 1)
	// add, backfill, four-statement rebuild.
	assert.Len(t, out[1], 6)
}

func TestPlanSQLSkipsPendingIndexes(t *testing.T) {
	name := "ix_events_kind"
	baseline := []schema.Table{{
		Name: "events",
		Columns: []schema.Column{
			{Name: "id", Type: schema.Simple(schema.TypeBigInt)},
			{Name: "kind", Type: schema.Varchar(64), Nullable: true},
		},
		Constraints: []schema.Constraint{
			schema.PrimaryKey(false, "id"),
			schema.Index(&name, "kind"),
		},
	}}
	plan := migrate.Plan{Version: 2, Actions: []migrate.Action{
		migrate.ModifyColumnNullable{Table: "events", Column: "kind", Nullable: false},
		migrate.AddIndex{Table: "events", Index: schema.Index(&name, "kind")},
	}}

	out, err := NewGeneratorFor(DialectSQLite).PlanSQL(plan, baseline)
	require.NoError(t, err)
	require.Len(t, out, 2)

	// The rebuild must not recreate the index a later action adds.
	creates := 0
	for _, stmts := range out {
		for _, s := range stmts {
			if strings.HasPrefix(s, `CREATE INDEX "ix_events_kind"`) {
				creates++
			}
		}
	}
	assert.Equal(t, 1, creates)
	assert.Len(t, out[0], 4)
}

func TestPlanSQLGenerationError(t *testing.T) {
	plan := migrate.Plan{Version: 1, Actions: []migrate.Action{
		migrate.AddColumn{
			Table:    "ghosts",
			Column:   schema.Column{Name: "x", Type: schema.Simple(schema.TypeText)},
			FillWith: schema.StringPtr("''"),
		},
	}}

	_, err := NewGeneratorFor(DialectSQLite).PlanSQL(plan, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate SQL for action 0 (add_column)")
}

func TestPlanSQLReplayError(t *testing.T) {
	plan := migrate.Plan{Version: 1, Actions: []migrate.Action{
		migrate.DeleteTable{Table: "ghosts"},
	}}

	_, err := NewGeneratorFor(DialectPostgres).PlanSQL(plan, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to replay action 0 (delete_table)")
}

func TestPlanSQLAll(t *testing.T) {
	plan := migrate.Plan{Version: 1, Actions: []migrate.Action{
		migrate.CreateTable{
			Table: "users",
			Columns: []schema.Column{
				{Name: "id", Type: schema.Simple(schema.TypeBigInt)},
			},
			Constraints: []schema.Constraint{schema.PrimaryKey(true, "id")},
		},
	}}

	out, err := PlanSQLAll(plan, nil)
	require.NoError(t, err)
	require.Len(t, out, len(AllDialects))
	for _, d := range AllDialects {
		require.Contains(t, out, d)
		require.Len(t, out[d], 1)
	}
	assert.Equal(t, `CREATE TABLE "users" ( "id" bigserial NOT NULL, PRIMARY KEY ("id") )`, out[DialectPostgres][0][0])
	assert.Equal(t, `CREATE TABLE "users" ( "id" integer PRIMARY KEY AUTOINCREMENT )`, out[DialectSQLite][0][0])
}
