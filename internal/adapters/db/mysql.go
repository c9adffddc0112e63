// Copyright 2025.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/mkohlmann/storesync/internal/core/domain"
)

// MySQL executes statements against the local database over database/sql.
type MySQL struct {
	db *sql.DB
}

// Open connects to the local database described by cfg.
func Open(cfg domain.DBConfig) (*MySQL, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mysqlCfg := mysql.NewConfig()
	mysqlCfg.Net = "tcp"
	mysqlCfg.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mysqlCfg.DBName = cfg.Name
	mysqlCfg.User = cfg.User
	mysqlCfg.Passwd = cfg.Password
	mysqlCfg.MultiStatements = true

	conn, err := sql.Open("mysql", mysqlCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}
	return &MySQL{db: conn}, nil
}

// Exec runs a statement and returns the number of affected rows.
func (m *MySQL) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// QueryString returns a single string column from the first matching row
// and whether a row was found.
func (m *MySQL) QueryString(ctx context.Context, query string, args ...any) (string, bool, error) {
	var value string
	err := m.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Close releases the connection pool.
func (m *MySQL) Close() error {
	return m.db.Close()
}
