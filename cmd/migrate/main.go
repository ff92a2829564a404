// migrate aplica el esquema de stocklink sobre Postgres.
//
// Las migraciones viajan embebidas en el binario (migrations/postgres) y el
// estado se lleva en la tabla schema_migrations: cada versión se aplica una
// sola vez, en su propia transacción junto con el asiento en la tabla.
//
// Uso: migrate [-config path] [up|down|status] [steps]
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dropDatabas3/stocklink/internal/config"
	migrations "github.com/dropDatabas3/stocklink/migrations/postgres"
)

const ledgerDDL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

func main() {
	configPath := flag.String("config", "configs/config.example.yaml", "Path al config YAML")
	flag.Parse()

	action, steps := "up", 0
	if args := flag.Args(); len(args) >= 1 && args[0] != "" {
		action = strings.ToLower(args[0])
		if len(args) >= 2 {
			if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
				steps = n
			}
		}
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if cfg.Storage.DSN == "" {
		log.Fatal("DATABASE_DSN no configurado")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("pgxpool: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, ledgerDDL); err != nil {
		log.Fatalf("schema_migrations: %v", err)
	}

	versions, err := embeddedVersions()
	if err != nil {
		log.Fatalf("embedded migrations: %v", err)
	}
	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		log.Fatalf("applied versions: %v", err)
	}

	switch action {
	case "up":
		runUp(ctx, pool, versions, applied, steps)
	case "down":
		runDown(ctx, pool, versions, applied, steps)
	case "status":
		for _, v := range versions {
			mark := "pending"
			if applied[v] {
				mark = "applied"
			}
			fmt.Printf("%-40s %s\n", v, mark)
		}
	default:
		log.Fatalf("acción desconocida %q. Uso: up | down [steps] | status", action)
	}
}

// embeddedVersions lista las versiones disponibles en orden ascendente.
// Una versión es el nombre del archivo sin el sufijo _up.sql.
func embeddedVersions() ([]string, error) {
	files, err := fs.Glob(migrations.FS, "*_up.sql")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, strings.TrimSuffix(f, "_up.sql"))
	}
	sort.Strings(out)
	return out, nil
}

func appliedVersions(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func runUp(ctx context.Context, pool *pgxpool.Pool, versions []string, applied map[string]bool, steps int) {
	ran := 0
	for _, v := range versions {
		if applied[v] {
			continue
		}
		if steps > 0 && ran >= steps {
			break
		}
		if err := applyVersion(ctx, pool, v); err != nil {
			log.Fatalf("up %s: %v", v, err)
		}
		ran++
	}
	log.Printf("up: %d migración(es) aplicadas", ran)
}

func runDown(ctx context.Context, pool *pgxpool.Pool, versions []string, applied map[string]bool, steps int) {
	// de la más reciente a la más vieja
	ran := 0
	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		if !applied[v] {
			continue
		}
		if steps > 0 && ran >= steps {
			break
		}
		if err := revertVersion(ctx, pool, v); err != nil {
			log.Fatalf("down %s: %v", v, err)
		}
		ran++
	}
	log.Printf("down: %d migración(es) revertidas", ran)
}

func applyVersion(ctx context.Context, pool *pgxpool.Pool, version string) error {
	sql, err := fs.ReadFile(migrations.FS, version+"_up.sql")
	if err != nil {
		return err
	}

	start := time.Now()
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(sql)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("OK %s (%s)", version, time.Since(start).Truncate(time.Millisecond))
	return nil
}

func revertVersion(ctx context.Context, pool *pgxpool.Pool, version string) error {
	sql, err := fs.ReadFile(migrations.FS, version+"_down.sql")
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(sql)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, version); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("OK %s (down)", version)
	return nil
}
