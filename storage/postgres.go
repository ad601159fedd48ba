// storage/postgres.go

package storage

import (
	"context"
	"fmt"
	"time"

	"account-ledger/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore implements the Store interface for PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore, connects to the database, and initializes the schema.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	var pool *pgxpool.Pool
	var err error

	// Retry connecting to the database for a few seconds
	for i := 0; i < 5; i++ {
		pool, err = pgxpool.New(ctx, connString)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to database after retries: %w", err)
	}

	store := &PostgresStore{db: pool}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}

	return store, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.db.Close()
}

// initSchema creates the necessary tables if they don't exist.
// position keeps ledger insertion order; seq keeps transaction history order.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	accounts := `
    CREATE TABLE IF NOT EXISTS accounts (
        account_no   TEXT PRIMARY KEY,
        position     INT NOT NULL,
        name         TEXT NOT NULL,
        age          INT NOT NULL,
        email        TEXT NOT NULL,
        pin          INT NOT NULL,
        account_type TEXT NOT NULL,
        balance      NUMERIC NOT NULL,
        loan         NUMERIC NOT NULL
    );`
	if _, err := s.db.Exec(ctx, accounts); err != nil {
		return err
	}

	transactions := `
    CREATE TABLE IF NOT EXISTS account_transactions (
        account_no  TEXT NOT NULL REFERENCES accounts (account_no) ON DELETE CASCADE,
        seq         INT NOT NULL,
        type        TEXT NOT NULL,
        amount      NUMERIC NOT NULL,
        occurred_at TIMESTAMPTZ NOT NULL,
        PRIMARY KEY (account_no, seq)
    );`
	_, err := s.db.Exec(ctx, transactions)
	return err
}

// Load reads every account and its history, in ledger order.
func (s *PostgresStore) Load(ctx context.Context) (model.Ledger, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return model.Ledger{}, unavailable("begin read", err)
	}
	defer tx.Rollback(ctx) // Read-only; nothing to commit.

	rows, err := tx.Query(ctx, `
        SELECT account_no, name, age, email, pin, account_type, balance, loan
        FROM accounts ORDER BY position`)
	if err != nil {
		return model.Ledger{}, unavailable("query accounts", err)
	}

	var l model.Ledger
	index := make(map[string]int)
	for rows.Next() {
		var acc model.Account
		var accountType string
		if err := rows.Scan(&acc.AccountNumber, &acc.Name, &acc.Age, &acc.Email, &acc.PIN,
			&accountType, &acc.Balance, &acc.Loan); err != nil {
			rows.Close()
			return model.Ledger{}, corrupt("scan account row: %v", err)
		}
		acc.Type = model.AccountType(accountType)
		index[acc.AccountNumber] = len(l.Accounts)
		l.Accounts = append(l.Accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return model.Ledger{}, unavailable("read accounts", err)
	}

	rows, err = tx.Query(ctx, `
        SELECT account_no, type, amount, occurred_at
        FROM account_transactions ORDER BY account_no, seq`)
	if err != nil {
		return model.Ledger{}, unavailable("query transactions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var accountNo, txnType string
		var amount decimal.Decimal
		var at time.Time
		if err := rows.Scan(&accountNo, &txnType, &amount, &at); err != nil {
			return model.Ledger{}, corrupt("scan transaction row: %v", err)
		}
		i, ok := index[accountNo]
		if !ok {
			return model.Ledger{}, corrupt("transaction for unknown account %s", accountNo)
		}
		l.Accounts[i].Transactions = append(l.Accounts[i].Transactions, model.Transaction{
			Type:   model.TransactionType(txnType),
			Amount: amount,
			Time:   at,
		})
	}
	if err := rows.Err(); err != nil {
		return model.Ledger{}, unavailable("read transactions", err)
	}

	if err := validateLedger(l); err != nil {
		return model.Ledger{}, err
	}
	return l, nil
}

// Save replaces the stored ledger within one database transaction.
// Concurrent readers keep seeing the previous ledger until the commit.
func (s *PostgresStore) Save(ctx context.Context, l model.Ledger) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return unavailable("begin", err)
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if the transaction has been committed.

	// Cascades to account_transactions.
	if _, err := tx.Exec(ctx, "DELETE FROM accounts"); err != nil {
		return unavailable("clear accounts", err)
	}

	batch := &pgx.Batch{}
	for pos, acc := range l.Accounts {
		batch.Queue(`
            INSERT INTO accounts (account_no, position, name, age, email, pin, account_type, balance, loan)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			acc.AccountNumber, pos, acc.Name, acc.Age, acc.Email, acc.PIN, string(acc.Type), acc.Balance, acc.Loan)
		for seq, txn := range acc.Transactions {
			batch.Queue(`
                INSERT INTO account_transactions (account_no, seq, type, amount, occurred_at)
                VALUES ($1, $2, $3, $4, $5)`,
				acc.AccountNumber, seq, string(txn.Type), txn.Amount, txn.Time)
		}
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return unavailable("write ledger", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return unavailable("commit", err)
	}
	return nil
}
