// Command seed imports faculty admin accounts from a CSV file of
// email,password,facultyID[,role] rows. Existing emails are skipped.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/uniexp/uniexp-admin-backend/internal/config"
	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"github.com/uniexp/uniexp-admin-backend/internal/repositories"
	mongorepo "github.com/uniexp/uniexp-admin-backend/internal/repositories/mongodb"
	"github.com/uniexp/uniexp-admin-backend/internal/services"
	mongodb "github.com/uniexp/uniexp-admin-backend/pkg/mongodb"
	"golang.org/x/exp/slog"
)

const defaultRole = "admin"

func main() {
	if len(os.Args) < 2 {
		slog.Error("CSV file path is required as a command line argument")
		os.Exit(2)
	}
	if err := run(os.Args[1]); err != nil {
		slog.Error("Failed to seed admins", "error", err)
		os.Exit(1)
	}
}

func run(csvFilePath string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	file, err := os.Open(csvFilePath)
	if err != nil {
		return fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	admins, err := parseAdmins(file)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	created, err := seed(ctx, mongorepo.NewAdminUserRepository(db), admins)
	slog.Info("Admins seeded", "created", created, "rows", len(admins))
	return err
}

// adminRow is one parsed CSV row with its plain password
type adminRow struct {
	line      int
	email     string
	password  string
	facultyID string
	role      string
}

// parseAdmins reads rows after the header. Rows missing a field are skipped
// with a warning.
func parseAdmins(r io.Reader) ([]adminRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV file: %w", err)
	}
	if len(records) < 2 {
		return nil, errors.New("CSV file is empty or has only header")
	}

	rows := make([]adminRow, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2
		if len(record) < 3 {
			slog.Warn("Row has fewer than 3 fields, skipping", "line", line)
			continue
		}
		row := adminRow{
			line:      line,
			email:     strings.ToLower(strings.TrimSpace(record[0])),
			password:  record[1],
			facultyID: strings.TrimSpace(record[2]),
			role:      defaultRole,
		}
		if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
			row.role = strings.TrimSpace(record[3])
		}
		if row.email == "" || row.password == "" || row.facultyID == "" {
			slog.Warn("Row has an empty field, skipping", "line", line)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// seed creates an account per row whose email is not yet taken
func seed(ctx context.Context, repo repositories.AdminUserRepository, rows []adminRow) (int, error) {
	created := 0
	for _, row := range rows {
		_, err := repo.FindByEmail(ctx, row.email)
		if err == nil {
			slog.Info("Admin exists, skipping", "email", row.email)
			continue
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return created, fmt.Errorf("look up %s: %w", row.email, err)
		}

		hashed, err := services.HashPassword(row.password)
		if err != nil {
			return created, err
		}
		admin := &models.AdminUser{
			Email:     row.email,
			Password:  hashed,
			FacultyID: row.facultyID,
			Role:      row.role,
		}
		if err := repo.Create(ctx, admin); err != nil {
			return created, fmt.Errorf("create %s (line %d): %w", row.email, row.line, err)
		}
		created++
	}
	return created, nil
}
