package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const defaultMongoDatabase = "gym"

// userDocument mirrors the users collection layout
type userDocument struct {
	TelegramID      int64      `bson:"telegramId"`
	FullName        string     `bson:"fullName"`
	Phone           string     `bson:"phone"`
	SelectedPackage string     `bson:"selectedPackage"`
	PaymentStatus   string     `bson:"paymentStatus"`
	ChapaTxRef      string     `bson:"chapaTxRef,omitempty"`
	PaymentDate     *time.Time `bson:"paymentDate,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt"`
}

func (d *userDocument) toUser() *User {
	u := &User{
		ChatID:          d.TelegramID,
		FullName:        d.FullName,
		Phone:           d.Phone,
		SelectedPackage: d.SelectedPackage,
		PaymentStatus:   PaymentStatus(d.PaymentStatus),
		TxRef:           d.ChapaTxRef,
		PaymentDate:     d.PaymentDate,
		CreatedAt:       d.CreatedAt,
	}
	if u.PaymentStatus == "" {
		u.PaymentStatus = PaymentPending
	}
	return u
}

// Mongo stores user records in a MongoDB collection
type Mongo struct {
	client *mongo.Client
	users  *mongo.Collection
}

// NewMongo connects to uri and ensures the users indexes exist. The database
// name comes from the URI path, "gym" if none is given.
func NewMongo(ctx context.Context, uri string) (*Mongo, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("parse mongo uri: %w", err)
	}
	dbName := cs.Database
	if dbName == "" {
		dbName = defaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	m := &Mongo{
		client: client,
		users:  client.Database(dbName).Collection("users"),
	}
	if err := m.init(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	return m, nil
}

func (m *Mongo) init(ctx context.Context) error {
	_, err := m.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "telegramId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "chapaTxRef", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Close disconnects the client
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// UpsertContact creates the user or updates name and phone
func (m *Mongo) UpsertContact(ctx context.Context, chatID int64, fullName, phone string) error {
	_, err := m.users.UpdateOne(ctx,
		bson.M{"telegramId": chatID},
		bson.M{
			"$set": bson.M{"fullName": fullName, "phone": phone},
			"$setOnInsert": bson.M{
				"paymentStatus": string(PaymentPending),
				"createdAt":     time.Now().UTC(),
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// GetByIdentity returns the user with the given chat id
func (m *Mongo) GetByIdentity(ctx context.Context, chatID int64) (*User, error) {
	return m.findOne(ctx, bson.M{"telegramId": chatID})
}

// GetByTransactionReference returns the user whose latest checkout has txRef
func (m *Mongo) GetByTransactionReference(ctx context.Context, txRef string) (*User, error) {
	if txRef == "" {
		return nil, ErrNotFound
	}
	return m.findOne(ctx, bson.M{"chapaTxRef": txRef})
}

// BeginPurchase records a new checkout attempt and resets the status to pending
func (m *Mongo) BeginPurchase(ctx context.Context, chatID int64, packageName, txRef string) error {
	_, err := m.users.UpdateOne(ctx,
		bson.M{"telegramId": chatID},
		bson.M{
			"$set": bson.M{
				"selectedPackage": packageName,
				"chapaTxRef":      txRef,
				"paymentStatus":   string(PaymentPending),
			},
			"$setOnInsert": bson.M{"createdAt": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// ResolvePayment stores the checkout outcome for txRef
func (m *Mongo) ResolvePayment(ctx context.Context, txRef string, status PaymentStatus, at time.Time) error {
	if txRef == "" {
		return ErrNotFound
	}

	result, err := m.users.UpdateOne(ctx,
		bson.M{"chapaTxRef": txRef},
		bson.M{"$set": bson.M{
			"paymentStatus": string(status),
			"paymentDate":   at.UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var doc userDocument
	err := m.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toUser(), nil
}
