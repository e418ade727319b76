// Package mongo provides a MongoDB-backed Store.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	invoicer "github.com/elevatehq/invoicer"
	"github.com/elevatehq/invoicer/id"
	"github.com/elevatehq/invoicer/invoice"
	invoicerstore "github.com/elevatehq/invoicer/store"
)

// Collection name constants.
const (
	colInvoices = "invoicer_invoices"
	colCounters = "invoicer_counters"
)

// compile-time interface check
var _ invoicerstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New creates a MongoDB store over an existing client.
func New(client *mongo.Client, database string) *Store {
	return &Store{
		client: client,
		db:     client.Database(database),
	}
}

// DB returns the underlying database handle for direct access.
func (s *Store) DB() *mongo.Database { return s.db }

// Migrate creates indexes for the invoicer collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "number", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{
					{Key: "number", Value: bson.D{{Key: "$gt", Value: ""}}},
				}),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := s.db.Collection(colInvoices).Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("invoicer/mongo: migrate %s indexes: %w", colInvoices, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// ==================== Counter store ====================

// IncrementCounter bumps the named counter by one and returns the new
// value. FindOneAndUpdate with $inc and upsert is a single atomic
// operation at the server, so concurrent issuers across processes each
// observe a distinct consecutive value.
func (s *Store) IncrementCounter(ctx context.Context, name string) (int64, error) {
	var m counterModel
	err := s.db.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: name}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "value", Value: int64(1)}}}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		return 0, fmt.Errorf("invoicer/mongo: increment counter %s: %w", name, err)
	}
	return m.Value, nil
}

func (s *Store) GetCounter(ctx context.Context, name string) (int64, error) {
	var m counterModel
	err := s.db.Collection(colCounters).FindOne(ctx,
		bson.D{{Key: "_id", Value: name}},
	).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return 0, invoicer.ErrCounterNotFound
		}
		return 0, err
	}
	return m.Value, nil
}

// ==================== Invoice store ====================

func (s *Store) CreateInvoice(ctx context.Context, rec *invoice.Record) error {
	m := toInvoiceModel(rec)
	_, err := s.db.Collection(colInvoices).InsertOne(ctx, m)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return invoicer.ErrAlreadyExists
		}
		return fmt.Errorf("invoicer/mongo: create invoice: %w", err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, recID id.InvoiceID) (*invoice.Record, error) {
	var m invoiceModel
	err := s.db.Collection(colInvoices).FindOne(ctx,
		bson.D{{Key: "_id", Value: recID.String()}},
	).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, invoicer.ErrInvoiceNotFound
		}
		return nil, err
	}
	return fromInvoiceModel(&m)
}

func (s *Store) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Record, error) {
	filter := bson.D{}
	if opts.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(opts.Status)})
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}

	cursor, err := s.db.Collection(colInvoices).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	recs := make([]*invoice.Record, 0)
	for cursor.Next(ctx) {
		var m invoiceModel
		if err := cursor.Decode(&m); err != nil {
			return nil, err
		}
		rec, err := fromInvoiceModel(&m)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, cursor.Err()
}

func (s *Store) UpdateInvoice(ctx context.Context, rec *invoice.Record) error {
	m := toInvoiceModel(rec)
	res, err := s.db.Collection(colInvoices).ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: m.ID}},
		m,
	)
	if err != nil {
		return fmt.Errorf("invoicer/mongo: update invoice: %w", err)
	}
	if res.MatchedCount == 0 {
		return invoicer.ErrInvoiceNotFound
	}
	return nil
}

// IssueInvoice transitions a draft in one guarded replace. The status
// filter makes the compare-and-set atomic at the server, so a
// concurrent issuer loses with ErrAlreadyIssued instead of rebinding
// the number.
func (s *Store) IssueInvoice(ctx context.Context, rec *invoice.Record) error {
	m := toInvoiceModel(rec)
	res, err := s.db.Collection(colInvoices).ReplaceOne(ctx,
		bson.D{
			{Key: "_id", Value: m.ID},
			{Key: "status", Value: string(invoice.StatusDraft)},
		},
		m,
	)
	if err != nil {
		return fmt.Errorf("invoicer/mongo: issue invoice: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := s.db.Collection(colInvoices).CountDocuments(ctx,
			bson.D{{Key: "_id", Value: m.ID}})
		if err != nil {
			return err
		}
		if n == 0 {
			return invoicer.ErrInvoiceNotFound
		}
		return invoicer.ErrAlreadyIssued
	}
	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, recID id.InvoiceID) error {
	res, err := s.db.Collection(colInvoices).DeleteOne(ctx,
		bson.D{{Key: "_id", Value: recID.String()}},
	)
	if err != nil {
		return fmt.Errorf("invoicer/mongo: delete invoice: %w", err)
	}
	if res.DeletedCount == 0 {
		return invoicer.ErrInvoiceNotFound
	}
	return nil
}

// ==================== Helpers ====================

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
