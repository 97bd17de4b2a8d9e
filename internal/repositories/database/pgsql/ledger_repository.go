package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ketepool/member_fund_app/internal/apperrors"
	"github.com/ketepool/member_fund_app/internal/core/domain"
	portsrepo "github.com/ketepool/member_fund_app/internal/core/ports/repositories"
	"github.com/ketepool/member_fund_app/internal/models"
	"github.com/ketepool/member_fund_app/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for the append-only
// member ledger.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const transactionColumns = `transaction_id, member_id, transaction_type, amount, status, reference, notes, created_at, created_by, last_updated_at, last_updated_by`

const insertTransactionQuery = `
	INSERT INTO transactions (` + transactionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`

// insertTransactionTx inserts one ledger entry inside an existing DB
// transaction. A unique violation on (member, type, reference) maps to
// apperrors.ErrDuplicateTransaction.
func insertTransactionTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	_, err := tx.Exec(ctx, insertTransactionQuery,
		m.TransactionID,
		m.MemberID,
		m.TransactionType,
		m.Amount,
		m.Status,
		m.Reference,
		m.Notes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: reference %s for member %s", apperrors.ErrDuplicateTransaction, txn.Reference, txn.MemberID)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.MemberID,
		&m.TransactionType,
		&m.Amount,
		&m.Status,
		&m.Reference,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindTransactionByID retrieves a ledger entry by its ID.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}

	d := mapping.ToDomainTransaction(m)
	return &d, nil
}

// FindByMemberTypeReferenceSince finds the most recent entry with the same
// (member, type, reference) created at or after the given instant.
func (r *PgxLedgerRepository) FindByMemberTypeReferenceSince(ctx context.Context, memberID string, txnType domain.TransactionType, reference string, since time.Time) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE member_id = $1 AND transaction_type = $2 AND reference = $3 AND created_at >= $4
		ORDER BY created_at DESC
		LIMIT 1;
	`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, memberID, string(txnType), reference, since))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by reference %s: %w", reference, err)
	}

	d := mapping.ToDomainTransaction(m)
	return &d, nil
}

// SumCompletedByMember computes the member's balance from completed
// entries. The ledger is the single source of truth for balances.
func (r *PgxLedgerRepository) SumCompletedByMember(ctx context.Context, memberID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE member_id = $1 AND status = $2;
	`
	var balance decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, memberID, models.TransactionStatus(domain.TxnCompleted)).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum completed transactions for member %s: %w", memberID, err)
	}
	return balance, nil
}

// FindDuplicateGroups detects groups of entries sharing (reference, type,
// amount) with more than one row, IDs ordered earliest first.
func (r *PgxLedgerRepository) FindDuplicateGroups(ctx context.Context, memberID string) ([]domain.DuplicateGroup, error) {
	query := `
		SELECT reference, transaction_type, amount, COUNT(*),
		       ARRAY_AGG(transaction_id ORDER BY created_at ASC, transaction_id ASC)
		FROM transactions
		WHERE member_id = $1
		GROUP BY reference, transaction_type, amount
		HAVING COUNT(*) > 1;
	`
	rows, err := r.Pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query duplicate groups for member %s: %w", memberID, err)
	}
	defer rows.Close()

	var groups []domain.DuplicateGroup
	for rows.Next() {
		var g domain.DuplicateGroup
		var txnType string
		if err := rows.Scan(&g.Reference, &txnType, &g.Amount, &g.Count, &g.TransactionIDs); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate group row: %w", err)
		}
		g.TransactionType = domain.TransactionType(txnType)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating duplicate group rows: %w", err)
	}

	return groups, nil
}

// SaveTransaction inserts one ledger entry in its own DB transaction.
func (r *PgxLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertTransactionTx(ctx, tx, txn); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// SavePaymentWithBalanceCheck locks the member row, verifies the completed
// balance covers the debit and inserts it, all in one DB transaction. The
// row lock serializes concurrent payments for the same member so the check
// and the insert cannot interleave.
func (r *PgxLedgerRepository) SavePaymentWithBalanceCheck(ctx context.Context, txn domain.Transaction) error {
	if !txn.Amount.IsNegative() {
		return fmt.Errorf("%w: payment amount must be negative, got %s", apperrors.ErrValidation, txn.Amount.String())
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var memberID string
	err = tx.QueryRow(ctx, `SELECT member_id FROM members WHERE member_id = $1 FOR UPDATE;`, txn.MemberID).Scan(&memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock member %s: %w", txn.MemberID, err)
	}

	var balance decimal.Decimal
	balanceQuery := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE member_id = $1 AND status = $2;
	`
	if err := tx.QueryRow(ctx, balanceQuery, txn.MemberID, models.TransactionStatus(domain.TxnCompleted)).Scan(&balance); err != nil {
		return fmt.Errorf("failed to compute balance for member %s: %w", txn.MemberID, err)
	}

	debit := txn.Amount.Neg()
	if balance.LessThan(debit) {
		return fmt.Errorf("%w: balance %s is less than requested %s for member %s",
			apperrors.ErrInsufficientFunds, balance.String(), debit.String(), txn.MemberID)
	}

	if err := insertTransactionTx(ctx, tx, txn); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateTransactionStatus transitions a ledger entry's settlement state.
func (r *PgxLedgerRepository) UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE transactions
		SET status = $1, last_updated_by = $2, last_updated_at = $3
		WHERE transaction_id = $4;
	`
	tag, err := r.Pool.Exec(ctx, query, string(status), updatedBy, updatedAt, transactionID)
	if err != nil {
		return fmt.Errorf("failed to update status of transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteDuplicateTransactions removes all but the earliest entry of every
// duplicate group for the member. Admin-invoked repair.
func (r *PgxLedgerRepository) DeleteDuplicateTransactions(ctx context.Context, memberID string) (int64, error) {
	query := `
		DELETE FROM transactions t
		USING (
			SELECT transaction_id,
			       ROW_NUMBER() OVER (
			           PARTITION BY reference, transaction_type, amount
			           ORDER BY created_at ASC, transaction_id ASC
			       ) AS rn
			FROM transactions
			WHERE member_id = $1
		) d
		WHERE t.transaction_id = d.transaction_id AND d.rn > 1;
	`
	tag, err := r.Pool.Exec(ctx, query, memberID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete duplicate transactions for member %s: %w", memberID, err)
	}
	return tag.RowsAffected(), nil
}
