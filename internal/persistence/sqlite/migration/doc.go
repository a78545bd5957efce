// Package migration applies the embedded schema migrations for the workspace
// session store. Migrations are ordered, applied transactionally, and recorded
// in the schema_migrations table so startup is idempotent.
package migration
