package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/papertrade/position"
	"github.com/dnldd/papertrade/shared"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createPositionTableSQL = "CREATE TABLE IF NOT EXISTS position (id TEXT PRIMARY KEY, " +
		"symbol TEXT, buyprice REAL, quantity INTEGER, buydate INTEGER, stoploss REAL, " +
		"target REAL, signalstrength INTEGER, sold INTEGER, sellprice REAL, selldate INTEGER, " +
		"exitreason INTEGER, profitloss REAL, profitlosspercent REAL)"
	createTradeTableSQL = "CREATE TABLE IF NOT EXISTS trade (id TEXT PRIMARY KEY, " +
		"symbol TEXT, action INTEGER, price REAL, quantity INTEGER, exitreason INTEGER, " +
		"rsiatentry REAL, newssentiment REAL, capitalused REAL, profitloss REAL, " +
		"profitlosspercent REAL, signalstrength INTEGER, createdon INTEGER)"
	createSentimentTableSQL = "CREATE TABLE IF NOT EXISTS sentiment (id TEXT PRIMARY KEY, " +
		"symbol TEXT, score REAL, createdon INTEGER)"

	upsertPositionSQL = "INSERT OR REPLACE INTO position(id, symbol, buyprice, quantity, " +
		"buydate, stoploss, target, signalstrength, sold, sellprice, selldate, exitreason, " +
		"profitloss, profitlosspercent) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)"
	findOpenPositionSQL = "SELECT * FROM position WHERE symbol = ? AND sold = 0 LIMIT 1"
	allOpenPositionsSQL = "SELECT * FROM position WHERE sold = 0"

	recordTradeSQL = "INSERT INTO trade(id, symbol, action, price, quantity, exitreason, " +
		"rsiatentry, newssentiment, capitalused, profitloss, profitlosspercent, " +
		"signalstrength, createdon) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)"
	tradesByRangeSQL = "SELECT * FROM trade WHERE createdon >= ? AND createdon < ? ORDER BY createdon"

	sentimentWindowSQL = "SELECT AVG(score) AS avg, COUNT(*) AS count FROM sentiment " +
		"WHERE symbol = ? AND createdon >= ? AND createdon < ?"
)

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	client *rqlitehttp.Client
}

// Ensure the database implements the storage interfaces it backs.
var _ position.Storer = (*Database)(nil)
var _ position.TradeRecorder = (*Database)(nil)
var _ position.ExitCommitter = (*Database)(nil)
var _ shared.SentimentStorer = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	db := &Database{
		cfg:    cfg,
		client: client,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// bootstrap initializes the database schema.
func (db *Database) bootstrap(ctx context.Context) error {
	_, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createPositionTableSQL},
		{SQL: createTradeTableSQL},
		{SQL: createSentimentTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// rowFloat fetches the provided row key as a float.
func rowFloat(row map[string]any, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// rowInt fetches the provided row key as an int.
func rowInt(row map[string]any, key string) int {
	return int(rowFloat(row, key))
}

// rowString fetches the provided row key as a string.
func rowString(row map[string]any, key string) string {
	v, _ := row[key].(string)
	return v
}

// rowTime fetches the provided row key as a unix timestamp.
func rowTime(row map[string]any, key string) time.Time {
	unix := int64(rowFloat(row, key))
	if unix == 0 {
		return time.Time{}
	}

	return time.Unix(unix, 0)
}

// decodePosition decodes a position from the provided row.
func (db *Database) decodePosition(row map[string]any) (*position.Position, error) {
	id := rowString(row, "id")
	symbol := rowString(row, "symbol")
	if id == "" || symbol == "" {
		db.cfg.Logger.Error().Msgf("malformed position row: %s", spew.Sdump(row))
		return nil, fmt.Errorf("%w: malformed position row", shared.ErrExternalService)
	}

	pos := &position.Position{
		ID:                id,
		Symbol:            symbol,
		BuyPrice:          rowFloat(row, "buyprice"),
		Quantity:          rowInt(row, "quantity"),
		BuyDate:           rowTime(row, "buydate"),
		StopLoss:          rowFloat(row, "stoploss"),
		Target:            rowFloat(row, "target"),
		SignalStrength:    shared.Signal(rowInt(row, "signalstrength")),
		Sold:              rowInt(row, "sold") != 0,
		SellPrice:         rowFloat(row, "sellprice"),
		SellDate:          rowTime(row, "selldate"),
		ExitReason:        shared.ExitReason(rowInt(row, "exitreason")),
		ProfitLoss:        rowFloat(row, "profitloss"),
		ProfitLossPercent: rowFloat(row, "profitlosspercent"),
	}

	return pos, nil
}

// decodeTrade decodes a trade from the provided row.
func (db *Database) decodeTrade(row map[string]any) (*position.Trade, error) {
	id := rowString(row, "id")
	symbol := rowString(row, "symbol")
	if id == "" || symbol == "" {
		db.cfg.Logger.Error().Msgf("malformed trade row: %s", spew.Sdump(row))
		return nil, fmt.Errorf("%w: malformed trade row", shared.ErrExternalService)
	}

	trade := &position.Trade{
		ID:                id,
		Symbol:            symbol,
		Action:            shared.Action(rowInt(row, "action")),
		Price:             rowFloat(row, "price"),
		Quantity:          rowInt(row, "quantity"),
		ExitReason:        shared.ExitReason(rowInt(row, "exitreason")),
		RSIAtEntry:        rowFloat(row, "rsiatentry"),
		NewsSentiment:     rowFloat(row, "newssentiment"),
		CapitalUsed:       rowFloat(row, "capitalused"),
		ProfitLoss:        rowFloat(row, "profitloss"),
		ProfitLossPercent: rowFloat(row, "profitlosspercent"),
		SignalStrength:    shared.Signal(rowInt(row, "signalstrength")),
		CreatedOn:         rowTime(row, "createdon"),
	}

	return trade, nil
}

// queryRows executes the provided query and returns its rows.
func (db *Database) queryRows(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	resp, err := db.client.QuerySingle(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying database: %v", shared.ErrExternalService, err)
	}

	results := resp.GetQueryResultsAssoc()
	if len(results) == 0 {
		return nil, nil
	}

	return results[0].Rows, nil
}

// positionParams builds the positional parameters of the position upsert.
func positionParams(pos *position.Position) []any {
	sold := 0
	if pos.Sold {
		sold = 1
	}

	var sellDate int64
	if !pos.SellDate.IsZero() {
		sellDate = pos.SellDate.Unix()
	}

	return []any{pos.ID, pos.Symbol, pos.BuyPrice, pos.Quantity, pos.BuyDate.Unix(),
		pos.StopLoss, pos.Target, int(pos.SignalStrength), sold, pos.SellPrice,
		sellDate, int(pos.ExitReason), pos.ProfitLoss, pos.ProfitLossPercent}
}

// tradeParams builds the positional parameters of the trade insert.
func tradeParams(trade *position.Trade) []any {
	return []any{trade.ID, trade.Symbol, int(trade.Action), trade.Price, trade.Quantity,
		int(trade.ExitReason), trade.RSIAtEntry, trade.NewsSentiment, trade.CapitalUsed,
		trade.ProfitLoss, trade.ProfitLossPercent, int(trade.SignalStrength),
		trade.CreatedOn.Unix()}
}

// Save persists the provided position, replacing any prior state for its id.
func (db *Database) Save(ctx context.Context, pos *position.Position) error {
	resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: upsertPositionSQL, PositionalParams: positionParams(pos)},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return fmt.Errorf("%w: persisting position %s: %v", shared.ErrExternalService, pos.ID, err)
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("%w: persisting position %s: %d -> %s",
			shared.ErrExternalService, pos.ID, idx, errStr)
	}

	return nil
}

// FindOpen returns the open position for the provided symbol, or nil when
// there is none.
func (db *Database) FindOpen(ctx context.Context, symbol string) (*position.Position, error) {
	rows, err := db.queryRows(ctx, findOpenPositionSQL, symbol)
	if err != nil {
		return nil, fmt.Errorf("finding open position for %s: %w", symbol, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return db.decodePosition(rows[0])
}

// AllOpen returns every open position.
func (db *Database) AllOpen(ctx context.Context) ([]*position.Position, error) {
	rows, err := db.queryRows(ctx, allOpenPositionsSQL)
	if err != nil {
		return nil, fmt.Errorf("finding open positions: %w", err)
	}

	open := make([]*position.Position, 0, len(rows))
	for idx := range rows {
		pos, err := db.decodePosition(rows[idx])
		if err != nil {
			return nil, err
		}

		open = append(open, pos)
	}

	return open, nil
}

// Record appends the provided trade to the ledger.
func (db *Database) Record(ctx context.Context, trade *position.Trade) error {
	resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: recordTradeSQL, PositionalParams: tradeParams(trade)},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return fmt.Errorf("%w: recording trade %s: %v", shared.ErrExternalService, trade.ID, err)
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("%w: recording trade %s: %d -> %s",
			shared.ErrExternalService, trade.ID, idx, errStr)
	}

	return nil
}

// CommitExit persists the provided sold position and its exit trade in a
// single transaction.
func (db *Database) CommitExit(ctx context.Context, pos *position.Position, trade *position.Trade) error {
	resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: upsertPositionSQL, PositionalParams: positionParams(pos)},
		{SQL: recordTradeSQL, PositionalParams: tradeParams(trade)},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return fmt.Errorf("%w: committing exit for position %s: %v",
			shared.ErrExternalService, pos.ID, err)
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("%w: committing exit for position %s: %d -> %s",
			shared.ErrExternalService, pos.ID, idx, errStr)
	}

	return nil
}

// TradesByRange returns ledger entries created within [start, end).
func (db *Database) TradesByRange(ctx context.Context, start time.Time, end time.Time) ([]*position.Trade, error) {
	rows, err := db.queryRows(ctx, tradesByRangeSQL, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("finding trades by range: %w", err)
	}

	trades := make([]*position.Trade, 0, len(rows))
	for idx := range rows {
		trade, err := db.decodeTrade(rows[idx])
		if err != nil {
			return nil, err
		}

		trades = append(trades, trade)
	}

	return trades, nil
}

// QuerySentimentWindow aggregates sentiment samples for the provided symbol
// within [start, end). A window with no samples returns a zero aggregate.
func (db *Database) QuerySentimentWindow(ctx context.Context, symbol string, start time.Time, end time.Time) (shared.SentimentWindow, error) {
	rows, err := db.queryRows(ctx, sentimentWindowSQL, symbol, start.Unix(), end.Unix())
	if err != nil {
		return shared.SentimentWindow{}, fmt.Errorf("querying sentiment window for %s: %w", symbol, err)
	}
	if len(rows) == 0 {
		return shared.SentimentWindow{}, nil
	}

	window := shared.SentimentWindow{
		Avg:   rowFloat(rows[0], "avg"),
		Count: rowInt(rows[0], "count"),
	}

	return window, nil
}
