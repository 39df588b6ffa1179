package history

import (
	"context"
	"fmt"

	"foodcart_back_end/internal/models"

	"github.com/gocql/gocql"
)

const createTableCQL = `CREATE TABLE IF NOT EXISTS order_status_history (
	order_id text,
	at timestamp,
	from_status text,
	to_status text,
	actor text,
	user_id text,
	restaurant_id text,
	PRIMARY KEY (order_id, at, to_status)
) WITH CLUSTERING ORDER BY (at ASC, to_status ASC)`

const (
	insertEventCQL = `INSERT INTO order_status_history
		(order_id, at, from_status, to_status, actor, user_id, restaurant_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	selectEventsCQL = `SELECT at, from_status, to_status, actor, user_id, restaurant_id
		FROM order_status_history WHERE order_id = ?`
)

type ScyllaStore struct {
	session *gocql.Session
}

func NewScyllaStore(session *gocql.Session) *ScyllaStore {
	return &ScyllaStore{session: session}
}

func (s *ScyllaStore) EnsureSchema(ctx context.Context) error {
	if err := s.session.Query(createTableCQL).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("create order_status_history: %w", err)
	}
	return nil
}

func (s *ScyllaStore) Append(ctx context.Context, e models.OrderEvent) error {
	err := s.session.Query(insertEventCQL,
		e.OrderID, e.At, string(e.From), string(e.To), e.Actor, e.UserID, e.RestaurantID,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("append order history: %w", err)
	}
	return nil
}

func (s *ScyllaStore) List(ctx context.Context, orderID string) ([]models.OrderEvent, error) {
	iter := s.session.Query(selectEventsCQL, orderID).WithContext(ctx).Iter()

	events := []models.OrderEvent{}
	var (
		e        models.OrderEvent
		from, to string
	)
	for iter.Scan(&e.At, &from, &to, &e.Actor, &e.UserID, &e.RestaurantID) {
		e.OrderID = orderID
		e.From = models.OrderStatus(from)
		e.To = models.OrderStatus(to)
		events = append(events, e)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list order history: %w", err)
	}
	return events, nil
}
