package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"biblioteca.dev/internal/auth"
	"biblioteca.dev/internal/migrate"
	"biblioteca.dev/internal/obs"
)

func main() {
	var (
		dsn            = flag.String("dsn", os.Getenv("BIBLIOTECA_PG_DSN"), "PostgreSQL DSN")
		migrationsPath = flag.String("migrations", "migrations", "Path to SQL migrations")
		seedsPath      = flag.String("seeds", "seeds", "Path to SQL seeds")
		adminEmail     = flag.String("seed-admin", "", "Create an admin user with this email after seeding")
	)
	flag.Parse()

	log := obs.Logger()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or BIBLIOTECA_PG_DSN")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|seed|status]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	mgr := migrate.NewManager(db, *migrationsPath, *seedsPath, log)

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "seed":
		if err = mgr.Seed(ctx); err == nil && *adminEmail != "" {
			err = seedAdmin(ctx, db, *adminEmail)
		}
	case "status":
		var applied []string
		if applied, err = mgr.Status(ctx); err == nil {
			if len(applied) == 0 {
				fmt.Println("no migrations applied")
			}
			for _, name := range applied {
				fmt.Println(name)
			}
		}
	default:
		log.Fatalf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

// seedAdmin inserts an admin account with a generated password. The
// password is printed once; it is never stored in plain text.
func seedAdmin(ctx context.Context, db *sql.DB, email string) error {
	password, err := auth.RandomPassword(16)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `
		insert into usuarios (nome, email, senha_hash, grupo_politica)
		values ('Administrador', $1, $2, 'admin')
		on conflict (email) do nothing`, email, hash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Printf("admin %s already exists, password unchanged\n", email)
		return nil
	}
	fmt.Printf("admin %s created, password: %s\n", email, password)
	return nil
}
