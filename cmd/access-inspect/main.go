package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/oarkflow/squealx"
	_ "modernc.org/sqlite"

	"github.com/rideops/access"
	"github.com/rideops/access/logger"
	"github.com/rideops/access/stores"
)

func main() {
	if len(os.Args) < 3 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "resolve-role":
		handleResolveRole()
	case "whoami":
		handleWhoami()
	case "profiles":
		handleProfiles()
	case "check":
		handleCheck()
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("access-inspect - Inspect access resolution against a seeded store")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  access-inspect resolve-role <config> <role-id>                 - Resolve a role's merged permissions")
	fmt.Println("  access-inspect whoami <config> <actor-id>                      - Resolve an actor's identity")
	fmt.Println("  access-inspect profiles <config>                               - List composite driver profiles")
	fmt.Println("  access-inspect check <config> <actor-id> <resource> <action>   - Allow/deny for an actor")
	fmt.Println()
	fmt.Println("Config is YAML or JSON with collections, cache sizing, and seed documents.")
	fmt.Println("Set ACCESS_SQLITE=<path> to run against a sqlite-backed store (':memory:' works).")
}

func buildCore(configFile string) (*access.Core, context.Context) {
	ctx := context.Background()

	cfg, err := access.NewConfigLoader().LoadFile(configFile)
	if err != nil {
		fatal("load config", err)
	}

	var store access.DocumentStore
	var seeder stores.Seeder
	if dsn := os.Getenv("ACCESS_SQLITE"); dsn != "" {
		sqlDB, err := sql.Open("sqlite", dsn)
		if err != nil {
			fatal("open sqlite", err)
		}
		db := squealx.NewDb(sqlDB, "sqlite", "access")
		if err := stores.Migrate(db); err != nil {
			fatal("migrate", err)
		}
		s := stores.NewSQLDocumentStore(db)
		store, seeder = s, s
	} else {
		s := stores.NewMemoryDocumentStore()
		store, seeder = s, s
	}

	if err := stores.SeedAll(ctx, seeder, cfg.Seed); err != nil {
		fatal("seed store", err)
	}

	opts, err := cfg.Options()
	if err != nil {
		fatal("apply config", err)
	}
	opts = append(opts, access.WithLogger(logger.NewPhusluLogger()))
	core, err := access.New(store, opts...)
	if err != nil {
		fatal("build core", err)
	}
	return core, ctx
}

func handleResolveRole() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: access-inspect resolve-role <config> <role-id>")
		os.Exit(1)
	}
	core, ctx := buildCore(os.Args[2])
	rec := core.ResolveRole(ctx, os.Args[3])
	if rec == nil {
		fmt.Printf("Role %q is unresolved: no stored record and no compiled-in default\n", os.Args[3])
		os.Exit(1)
	}
	printJSON(rec)
}

func handleWhoami() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: access-inspect whoami <config> <actor-id>")
		os.Exit(1)
	}
	core, ctx := buildCore(os.Args[2])
	ident := core.ResolveIdentity(ctx, os.Args[3], nil)
	if ident == nil {
		fmt.Printf("Actor %q is unknown\n", os.Args[3])
		os.Exit(1)
	}
	printJSON(ident)
}

func handleProfiles() {
	core, ctx := buildCore(os.Args[2])
	profiles := core.ListProfiles(ctx)
	fmt.Printf("Profiles: %d\n", len(profiles))
	printJSON(profiles)
}

func handleCheck() {
	if len(os.Args) < 6 {
		fmt.Println("Usage: access-inspect check <config> <actor-id> <resource> <action>")
		os.Exit(1)
	}
	core, ctx := buildCore(os.Args[2])
	actor, resource, action := os.Args[3], os.Args[4], os.Args[5]
	ident := core.ResolveIdentity(ctx, actor, nil)
	if ident == nil {
		fmt.Printf("DENY: actor %q is unknown\n", actor)
		os.Exit(1)
	}
	if core.Allow(ident, resource, action) {
		fmt.Printf("ALLOW: %s may %s %s (role %s)\n", actor, action, resource, ident.RoleID)
		return
	}
	fmt.Printf("DENY: %s may not %s %s (role %s)\n", actor, action, resource, ident.RoleID)
	os.Exit(1)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal("encode", err)
	}
	fmt.Println(string(out))
}

func fatal(what string, err error) {
	fmt.Printf("Error: %s: %v\n", what, err)
	os.Exit(1)
}
