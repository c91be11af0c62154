package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"northwind-analytics/internal/store"
)

// MongoDriver keeps one collection per table. Keyed tables store their key
// in _id; order details carry a unique (order_id, product_id) index.
type MongoDriver struct {
	client   *mongo.Client
	database string
}

func (md *MongoDriver) Connect(dsn string) error {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(dsn))
	if err != nil {
		return err
	}
	md.client = client
	if md.database == "" {
		md.database = "northwind"
	}
	return nil
}

func (md *MongoDriver) Close() error {
	return md.client.Disconnect(context.Background())
}

func (md *MongoDriver) collection(name string) *mongo.Collection {
	return md.client.Database(md.database).Collection(name)
}

func (md *MongoDriver) Reset(ctx context.Context) error {
	for _, name := range store.TableNames {
		if err := md.collection(name).Drop(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (md *MongoDriver) Setup(ctx context.Context) error {
	_, err := md.collection(store.TableOrderDetails).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "order_id", Value: 1}, {Key: "product_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func insertMany[T any](ctx context.Context, c *mongo.Collection, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	docs := make([]any, len(rows))
	for i := range rows {
		docs[i] = rows[i]
	}
	_, err := c.InsertMany(ctx, docs)
	return err
}

func (md *MongoDriver) Seed(ctx context.Context, t store.Tables) error {
	if err := insertMany(ctx, md.collection(store.TableCustomers), t.Customers); err != nil {
		return fmt.Errorf("seed customers: %w", err)
	}
	if err := insertMany(ctx, md.collection(store.TableCategories), t.Categories); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if err := insertMany(ctx, md.collection(store.TableProducts), t.Products); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if err := insertMany(ctx, md.collection(store.TableOrders), t.Orders); err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}
	if err := insertMany(ctx, md.collection(store.TableOrderDetails), t.OrderLines); err != nil {
		return fmt.Errorf("seed order details: %w", err)
	}
	return nil
}

// checkFields samples one document per collection. Empty collections pass.
func (md *MongoDriver) checkFields(ctx context.Context, table string) error {
	var doc bson.M
	err := md.collection(table).FindOne(ctx, bson.M{}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil
	}
	if err != nil {
		return err
	}
	key := store.RequiredColumns[table][0]
	fields := make([]string, 0, len(doc))
	for name := range doc {
		if name == "_id" && table != store.TableOrderDetails {
			name = key
		}
		fields = append(fields, name)
	}
	return store.CheckColumns(table, fields)
}

func findAll[T any](ctx context.Context, c *mongo.Collection, sort bson.D) ([]T, error) {
	cursor, err := c.Find(ctx, bson.M{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (md *MongoDriver) LoadTables(ctx context.Context) (store.Tables, error) {
	var t store.Tables
	for _, table := range store.TableNames {
		if err := md.checkFields(ctx, table); err != nil {
			return t, err
		}
	}

	byID := bson.D{{Key: "_id", Value: 1}}
	var err error
	if t.Customers, err = findAll[store.Customer](ctx, md.collection(store.TableCustomers), byID); err != nil {
		return t, fmt.Errorf("load customers: %w", err)
	}
	if t.Categories, err = findAll[store.Category](ctx, md.collection(store.TableCategories), byID); err != nil {
		return t, fmt.Errorf("load categories: %w", err)
	}
	if t.Products, err = findAll[store.Product](ctx, md.collection(store.TableProducts), byID); err != nil {
		return t, fmt.Errorf("load products: %w", err)
	}
	if t.Orders, err = findAll[store.Order](ctx, md.collection(store.TableOrders), byID); err != nil {
		return t, fmt.Errorf("load orders: %w", err)
	}
	lineOrder := bson.D{{Key: "order_id", Value: 1}, {Key: "product_id", Value: 1}}
	if t.OrderLines, err = findAll[store.OrderLine](ctx, md.collection(store.TableOrderDetails), lineOrder); err != nil {
		return t, fmt.Errorf("load order details: %w", err)
	}
	return t, nil
}
