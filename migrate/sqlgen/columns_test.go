package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/schema"
)

func usersSchema() []schema.Table {
	return []schema.Table{{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: schema.Simple(schema.TypeBigInt)},
			{Name: "email", Type: schema.Varchar(255)},
		},
		Constraints: []schema.Constraint{
			schema.PrimaryKey(true, "id"),
			schema.Unique(nil, "email"),
		},
	}}
}

func TestAddColumnBackfill(t *testing.T) {
	action := migrate.AddColumn{
		Table:    "users",
		Column:   schema.Column{Name: "nickname", Type: schema.Varchar(255)},
		FillWith: schema.StringPtr("''"),
	}

	t.Run("postgres", func(t *testing.T) {
		stmts, err := buildAddColumn(DialectPostgres, action, usersSchema(), nil)
		require.NoError(t, err)
		require.Len(t, stmts, 3)
		assert.Equal(t, `ALTER TABLE "users" ADD COLUMN "nickname" varchar(255)`, stmts[0])
		assert.Equal(t, `UPDATE "users" SET "nickname" = ''`, stmts[1])
		assert.Equal(t, `ALTER TABLE "users" ALTER COLUMN "nickname" SET NOT NULL`, stmts[2])
	})

	t.Run("mysql", func(t *testing.T) {
		stmts, err := buildAddColumn(DialectMySQL, action, usersSchema(), nil)
		require.NoError(t, err)
		require.Len(t, stmts, 3)
		assert.Equal(t, "ALTER TABLE `users` ADD COLUMN `nickname` varchar(255)", stmts[0])
		assert.Equal(t, "ALTER TABLE `users` MODIFY COLUMN `nickname` varchar(255) NOT NULL", stmts[2])
	})

	t.Run("sqlite rebuilds", func(t *testing.T) {
		stmts, err := buildAddColumn(DialectSQLite, action, usersSchema(), nil)
		require.NoError(t, err)
		// add, backfill, then the four-statement table swap.
		require.Len(t, stmts, 7)
		assert.Contains(t, stmts[2], `CREATE TABLE "users_temp"`)
		assert.Contains(t, stmts[2], `"nickname" varchar(255) NOT NULL`)
		assert.Equal(t, `INSERT INTO "users_temp" ("id", "email", "nickname") SELECT "id", "email", "nickname" FROM "users"`, stmts[3])
		assert.Equal(t, `DROP TABLE "users"`, stmts[4])
		assert.Equal(t, `ALTER TABLE "users_temp" RENAME TO "users"`, stmts[5])
		assert.Equal(t, `CREATE UNIQUE INDEX "uq_users__email" ON "users" ("email")`, stmts[6])
	})

	t.Run("sqlite needs current schema", func(t *testing.T) {
		_, err := buildAddColumn(DialectSQLite, action, nil, nil)
		require.Error(t, err)
		assert.EqualError(t, err, "Table 'users' not found in current schema. SQLite requires current schema information to add NOT NULL columns.")
	})

	t.Run("sqlite rebuild honors pending indexes", func(t *testing.T) {
		skip := map[string]bool{"uq_users__email": true}
		stmts, err := buildAddColumn(DialectSQLite, action, usersSchema(), skip)
		require.NoError(t, err)
		require.Len(t, stmts, 6)
		for _, s := range stmts {
			assert.NotContains(t, s, `CREATE UNIQUE INDEX "uq_users__email"`)
		}
	})
}

func TestAddColumnNullableSkipsBackfill(t *testing.T) {
	action := migrate.AddColumn{
		Table:  "users",
		Column: schema.Column{Name: "bio", Type: schema.Simple(schema.TypeText), Nullable: true},
	}
	stmts, err := buildAddColumn(DialectPostgres, action, usersSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{`ALTER TABLE "users" ADD COLUMN "bio" text`}, stmts)
}

func TestAddColumnDefaultConversion(t *testing.T) {
	action := migrate.AddColumn{
		Table: "users",
		Column: schema.Column{
			Name:     "token",
			Type:     schema.Simple(schema.TypeUUID),
			Nullable: true,
			Default:  schema.StringPtr("gen_random_uuid()"),
		},
	}

	tests := []struct {
		dialect Dialect
		want    string
	}{
		{DialectPostgres, `ALTER TABLE "users" ADD COLUMN "token" uuid DEFAULT gen_random_uuid()`},
		{DialectMySQL, "ALTER TABLE `users` ADD COLUMN `token` char(36) DEFAULT (UUID())"},
		{DialectSQLite, `ALTER TABLE "users" ADD COLUMN "token" text DEFAULT (lower(hex(randomblob(16))))`},
	}
	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			stmts, err := buildAddColumn(tt.dialect, action, usersSchema(), nil)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, stmts)
		})
	}
}

func TestAddColumnStringEnum(t *testing.T) {
	action := migrate.AddColumn{
		Table:  "tasks",
		Column: schema.Column{Name: "mood", Type: schema.StringEnum("mood", "happy", "sad"), Nullable: true},
	}

	stmts, err := buildAddColumn(DialectPostgres, action, nil, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, `CREATE TYPE "tasks_mood" AS ENUM ('happy', 'sad')`, stmts[0])
	assert.Equal(t, `ALTER TABLE "tasks" ADD COLUMN "mood" "tasks_mood"`, stmts[1])

	stmts, err = buildAddColumn(DialectSQLite, action, nil, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, `ALTER TABLE "tasks" ADD COLUMN "mood" text CONSTRAINT "chk_tasks_mood" CHECK ("mood" IN ('happy', 'sad'))`, stmts[0])
}

func TestModifyColumnTypeEnumSwapPostgres(t *testing.T) {
	current := []schema.Table{{
		Name: "tasks",
		Columns: []schema.Column{
			{Name: "id", Type: schema.Simple(schema.TypeBigInt)},
			{Name: "status", Type: schema.StringEnum("status", "open", "done")},
		},
		Constraints: []schema.Constraint{schema.PrimaryKey(false, "id")},
	}}
	action := migrate.ModifyColumnType{
		Table:   "tasks",
		Column:  "status",
		NewType: schema.StringEnum("state", "open", "done", "archived"),
	}

	stmts, err := buildModifyColumnType(DialectPostgres, action, current, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 4)
	assert.Equal(t, `CREATE TYPE "tasks_state_new" AS ENUM ('open', 'done', 'archived')`, stmts[0])
	assert.Equal(t, `ALTER TABLE "tasks" ALTER COLUMN "status" TYPE "tasks_state_new" USING "status"::text::"tasks_state_new"`, stmts[1])
	assert.Equal(t, `DROP TYPE "tasks_status"`, stmts[2])
	assert.Equal(t, `ALTER TYPE "tasks_state_new" RENAME TO "tasks_state"`, stmts[3])
}

func TestModifyColumnTypeDropsOldEnumPostgres(t *testing.T) {
	current := []schema.Table{{
		Name: "tasks",
		Columns: []schema.Column{
			{Name: "status", Type: schema.StringEnum("status", "open", "done")},
		},
	}}
	action := migrate.ModifyColumnType{
		Table:   "tasks",
		Column:  "status",
		NewType: schema.Varchar(20),
	}

	stmts, err := buildModifyColumnType(DialectPostgres, action, current, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, `ALTER TABLE "tasks" ALTER COLUMN "status" TYPE varchar(20)`, stmts[0])
	assert.Equal(t, `DROP TYPE IF EXISTS "tasks_status"`, stmts[1])
}

func TestModifyColumnTypeMySQL(t *testing.T) {
	action := migrate.ModifyColumnType{
		Table:   "users",
		Column:  "email",
		NewType: schema.Varchar(512),
	}
	stmts, err := buildModifyColumnType(DialectMySQL, action, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE `users` MODIFY COLUMN `email` varchar(512)"}, stmts)
}

func TestModifyColumnTypeSQLiteRequiresSchema(t *testing.T) {
	action := migrate.ModifyColumnType{Table: "ghosts", Column: "x", NewType: schema.Simple(schema.TypeText)}
	_, err := buildModifyColumnType(DialectSQLite, action, nil, nil)
	require.Error(t, err)
	assert.EqualError(t, err, "Table 'ghosts' not found in current schema. SQLite requires current schema information to modify column types.")
}

func TestModifyColumnNullableSQLiteRebuild(t *testing.T) {
	name := "ix_events_kind"
	current := []schema.Table{{
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
	action := migrate.ModifyColumnNullable{Table: "events", Column: "kind", Nullable: false}

	stmts, err := buildModifyColumnNullable(DialectSQLite, action, current, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 5)
	assert.Equal(t, `CREATE TABLE "events_temp" ( "id" bigint NOT NULL, "kind" varchar(64) NOT NULL, PRIMARY KEY ("id") )`, stmts[0])
	assert.Equal(t, `INSERT INTO "events_temp" ("id", "kind") SELECT "id", "kind" FROM "events"`, stmts[1])
	assert.Equal(t, `DROP TABLE "events"`, stmts[2])
	assert.Equal(t, `ALTER TABLE "events_temp" RENAME TO "events"`, stmts[3])
	assert.Equal(t, `CREATE INDEX "ix_events_kind" ON "events" ("kind")`, stmts[4])
}

func TestModifyColumnNullableBackfill(t *testing.T) {
	action := migrate.ModifyColumnNullable{
		Table:    "users",
		Column:   "email",
		Nullable: false,
		FillWith: schema.StringPtr("'unknown'"),
	}

	stmts, err := buildModifyColumnNullable(DialectPostgres, action, usersSchema(), nil)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, `UPDATE "users" SET "email" = 'unknown' WHERE "email" IS NULL`, stmts[0])
	assert.Equal(t, `ALTER TABLE "users" ALTER COLUMN "email" SET NOT NULL`, stmts[1])
}

func TestModifyColumnNullableLoosenPostgres(t *testing.T) {
	action := migrate.ModifyColumnNullable{Table: "users", Column: "email", Nullable: true}
	stmts, err := buildModifyColumnNullable(DialectPostgres, action, usersSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{`ALTER TABLE "users" ALTER COLUMN "email" DROP NOT NULL`}, stmts)
}

func TestModifyColumnNullableMySQLRequiresColumn(t *testing.T) {
	action := migrate.ModifyColumnNullable{Table: "users", Column: "ghost", Nullable: true}
	_, err := buildModifyColumnNullable(DialectMySQL, action, usersSchema(), nil)
	require.Error(t, err)
	assert.EqualError(t, err, "Column 'ghost' not found in table 'users'. MySQL requires column information to modify nullability.")
}

func TestModifyColumnDefault(t *testing.T) {
	set := migrate.ModifyColumnDefault{Table: "users", Column: "email", NewDefault: schema.StringPtr("'none'")}
	clear := migrate.ModifyColumnDefault{Table: "users", Column: "email"}

	stmts, err := buildModifyColumnDefault(DialectPostgres, set, usersSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{`ALTER TABLE "users" ALTER COLUMN "email" SET DEFAULT 'none'`}, stmts)

	stmts, err = buildModifyColumnDefault(DialectPostgres, clear, usersSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{`ALTER TABLE "users" ALTER COLUMN "email" DROP DEFAULT`}, stmts)

	stmts, err = buildModifyColumnDefault(DialectMySQL, set, usersSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE `users` MODIFY COLUMN `email` varchar(255) NOT NULL DEFAULT 'none'"}, stmts)
}

func TestModifyColumnComment(t *testing.T) {
	action := migrate.ModifyColumnComment{Table: "users", Column: "email", NewComment: schema.StringPtr("login address")}

	stmts, err := buildModifyColumnComment(DialectPostgres, action, usersSchema())
	require.NoError(t, err)
	assert.Equal(t, []string{`COMMENT ON COLUMN "users"."email" IS 'login address'`}, stmts)

	cleared := migrate.ModifyColumnComment{Table: "users", Column: "email"}
	stmts, err = buildModifyColumnComment(DialectPostgres, cleared, usersSchema())
	require.NoError(t, err)
	assert.Equal(t, []string{`COMMENT ON COLUMN "users"."email" IS NULL`}, stmts)

	stmts, err = buildModifyColumnComment(DialectMySQL, action, usersSchema())
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE `users` MODIFY COLUMN `email` varchar(255) NOT NULL COMMENT 'login address'"}, stmts)

	stmts, err = buildModifyColumnComment(DialectSQLite, action, usersSchema())
	require.NoError(t, err)
	assert.Nil(t, stmts)

	_, err = buildModifyColumnComment(DialectMySQL, action, nil)
	require.Error(t, err)
	assert.EqualError(t, err, "Table 'users' not found in current schema. MySQL requires current schema information to modify column comments.")
}

func TestDeleteColumnPostgresDropsEnumType(t *testing.T) {
	current := []schema.Table{{
		Name: "tasks",
		Columns: []schema.Column{
			{Name: "status", Type: schema.StringEnum("status", "open", "done")},
		},
	}}
	stmts, err := buildDeleteColumn(DialectPostgres, migrate.DeleteColumn{Table: "tasks", Column: "status"}, current, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, `ALTER TABLE "tasks" DROP COLUMN "status"`, stmts[0])
	assert.Equal(t, `DROP TYPE IF EXISTS "tasks_status"`, stmts[1])
}

func TestDeleteColumnSQLiteDropsCoveringIndexes(t *testing.T) {
	stmts, err := buildDeleteColumn(DialectSQLite, migrate.DeleteColumn{Table: "users", Column: "email"}, usersSchema(), nil)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, `DROP INDEX "uq_users__email"`, stmts[0])
	assert.Equal(t, `ALTER TABLE "users" DROP COLUMN "email"`, stmts[1])
}

func TestDeleteColumnSQLiteRebuildsForForeignKey(t *testing.T) {
	current := []schema.Table{{
		Name: "posts",
		Columns: []schema.Column{
			{Name: "id", Type: schema.Simple(schema.TypeBigInt)},
			{Name: "author_id", Type: schema.Simple(schema.TypeBigInt)},
		},
		Constraints: []schema.Constraint{
			schema.PrimaryKey(false, "id"),
			schema.ForeignKey(nil, []string{"author_id"}, "users", []string{"id"}, nil, nil),
		},
	}}

	stmts, err := buildDeleteColumn(DialectSQLite, migrate.DeleteColumn{Table: "posts", Column: "author_id"}, current, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 4)
	assert.Equal(t, `CREATE TABLE "posts_temp" ( "id" bigint NOT NULL, PRIMARY KEY ("id") )`, stmts[0])
	assert.Equal(t, `INSERT INTO "posts_temp" ("id") SELECT "id" FROM "posts"`, stmts[1])
	assert.Equal(t, `DROP TABLE "posts"`, stmts[2])
	assert.Equal(t, `ALTER TABLE "posts_temp" RENAME TO "posts"`, stmts[3])
}

func TestRenameColumn(t *testing.T) {
	action := migrate.RenameColumn{Table: "users", From: "name", To: "full_name"}
	assert.Equal(t, []string{`ALTER TABLE "users" RENAME COLUMN "name" TO "full_name"`},
		buildRenameColumn(DialectPostgres, action))
	assert.Equal(t, []string{"ALTER TABLE `users` RENAME COLUMN `name` TO `full_name`"},
		buildRenameColumn(DialectMySQL, action))
}
