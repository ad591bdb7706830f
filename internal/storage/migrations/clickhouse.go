package migrations

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	chstore "solana-pop/internal/storage/clickhouse"
)

// RunClickhouseMigrations creates the DSN's database if needed and the
// pop_claim_activity table in it. Every statement is IF NOT EXISTS, so it runs
// on each start. Returns a connection to the target database for reuse.
//
// The ClickHouse driver executes one statement per Exec, so each embedded file
// holds exactly one statement.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}

	files, err := load(clickhouseFiles, "clickhouse")
	if err != nil {
		return nil, err
	}

	admin, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse admin: %w", err)
	}
	err = admin.Exec(ctx, "CREATE DATABASE IF NOT EXISTS "+quoteIdent(dbName))
	admin.Close()
	if err != nil {
		return nil, fmt.Errorf("create database %s: %w", dbName, err)
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}

	for _, m := range files {
		stmt, err := singleStatement(m.sql)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("migration %s: %w", m.name, err)
		}
		if err := conn.Exec(ctx, stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}

	return conn, nil
}

// singleStatement drops "--" comment lines and the closing semicolon.
// A semicolon anywhere else means the file holds more than one statement.
func singleStatement(sql string) (string, error) {
	var lines []string
	for _, line := range strings.Split(sql, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	stmt := strings.TrimSpace(strings.Join(lines, "\n"))
	stmt = strings.TrimSpace(strings.TrimSuffix(stmt, ";"))
	if stmt == "" {
		return "", fmt.Errorf("no statement")
	}
	if strings.Contains(stmt, ";") {
		return "", fmt.Errorf("more than one statement")
	}
	return stmt, nil
}

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", fmt.Errorf("clickhouse dsn missing database")
	}
	return db, nil
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
