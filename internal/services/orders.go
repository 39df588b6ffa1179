package services

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"foodcart_back_end/internal/history"
	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/payment"
	"foodcart_back_end/internal/repository"
	"foodcart_back_end/internal/validation"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPaymentTimeout = 15 * time.Second
	staleBatchSize        = 100
	amountTolerance       = 0.01
)

type OrderDeps struct {
	Orders      repository.OrderRepository
	Restaurants repository.RestaurantRepository
	Menus       repository.MenuRepository
	Payments    payment.Backend
	Intents     IntentCache
	Events      EventPublisher
	History     history.Store

	Currency       string
	FrontendURL    string
	PaymentTimeout time.Duration
	Now            func() time.Time
}

type orderService struct {
	OrderDeps
	logger zerolog.Logger
}

func NewOrderService(deps OrderDeps, logger zerolog.Logger) OrderService {
	if deps.PaymentTimeout <= 0 {
		deps.PaymentTimeout = DefaultPaymentTimeout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &orderService{
		OrderDeps: deps,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// checkoutInput holds the validated fields shared by both checkout flows.
type checkoutInput struct {
	restaurantID primitive.ObjectID
	details      models.DeliveryDetails
	items        []models.CartItem
}

func (s *orderService) validateCheckout(actor models.Actor, items []models.CartItem, details *models.DeliveryDetails, restaurantID string) (*checkoutInput, error) {
	if actor.UserID.IsZero() || len(items) == 0 || details == nil || strings.TrimSpace(restaurantID) == "" {
		return nil, models.ErrMissingFields
	}

	if errs := validation.ValidateDeliveryDetails(*details); len(errs) > 0 {
		return nil, badRequest("%s", strings.Join(errs, ", "))
	}

	for _, item := range items {
		if strings.TrimSpace(item.MenuID) == "" || item.Quantity <= 0 || item.Quantity > models.MaxItemQuantity || item.Price < 0 {
			return nil, models.ErrInvalidCartItem
		}
	}

	id, err := parseID(restaurantID, models.ErrRestaurantNotFound)
	if err != nil {
		return nil, err
	}

	clean := *details
	clean.Name = strings.TrimSpace(clean.Name)
	clean.Email = strings.TrimSpace(clean.Email)
	clean.Address = strings.TrimSpace(clean.Address)
	clean.City = strings.TrimSpace(clean.City)
	clean.Country = strings.TrimSpace(clean.Country)

	return &checkoutInput{restaurantID: id, details: clean, items: items}, nil
}

func (s *orderService) CreatePaymentIntent(ctx context.Context, actor models.Actor, req models.PaymentIntentRequest) (*models.PaymentIntentResult, error) {
	if req.Amount <= 0 {
		return nil, models.ErrMissingFields
	}
	in, err := s.validateCheckout(actor, req.CartItems, req.DeliveryDetails, req.RestaurantID)
	if err != nil {
		return nil, err
	}

	exists, err := s.Restaurants.Exists(ctx, in.restaurantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.ErrRestaurantNotFound
	}

	total := models.CartTotal(in.items)
	if math.Abs(req.Amount-total) > amountTolerance {
		s.logger.Warn().
			Str("user_id", actor.UserID.Hex()).
			Float64("amount", req.Amount).
			Float64("cart_total", total).
			Msg("payment amount does not match cart")
		return nil, models.ErrAmountMismatch
	}

	amountMinor := models.ToMinorUnits(total)
	key := intentKey(actor.UserID.Hex(), req.RestaurantID, amountMinor, len(in.items), s.Now())
	if s.Intents != nil {
		if cached, ok := s.Intents.Get(ctx, key); ok {
			s.logger.Info().Str("order_id", cached.OrderID).Msg("returning cached payment intent")
			return cached, nil
		}
	}

	orderID := primitive.NewObjectID()

	var (
		intent *payment.Intent
		order  *models.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		intent, err = withTimeout(gctx, s.PaymentTimeout, func(ctx context.Context) (*payment.Intent, error) {
			return s.Payments.CreatePaymentIntent(ctx, payment.IntentParams{
				AmountMinor: amountMinor,
				Currency:    s.Currency,
				Email:       in.details.Email,
				Metadata: map[string]string{
					"orderId":      orderID.Hex(),
					"userId":       actor.UserID.Hex(),
					"restaurantId": req.RestaurantID,
					"itemCount":    itoa(len(in.items)),
					"total":        formatAmount(total),
				},
			})
		})
		if err != nil {
			return paymentErr(err)
		}
		return nil
	})
	g.Go(func() error {
		order = &models.Order{
			ID:              orderID,
			User:            actor.UserID,
			Restaurant:      in.restaurantID,
			DeliveryDetails: in.details,
			CartItems:       in.items,
			TotalAmount:     total,
			Status:          models.StatusPending,
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("user_id", actor.UserID.Hex()).Msg("failed to create payment intent")
		return nil, err
	}

	order.PaymentIntentID = intent.ID
	if err := s.Orders.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("payment_intent_id", intent.ID).Msg("payment intent created but order was not saved")
		return nil, err
	}

	res := &models.PaymentIntentResult{ClientSecret: intent.ClientSecret, OrderID: order.ID.Hex()}
	if s.Intents != nil {
		s.Intents.Put(ctx, key, res)
	}

	s.logger.Info().
		Str("order_id", res.OrderID).
		Str("payment_intent_id", intent.ID).
		Float64("total", total).
		Msg("payment intent order created")

	return res, nil
}

func (s *orderService) CreateCheckoutSession(ctx context.Context, actor models.Actor, req models.CheckoutSessionRequest) (*models.CheckoutSessionResult, error) {
	in, err := s.validateCheckout(actor, req.CartItems, req.DeliveryDetails, req.RestaurantID)
	if err != nil {
		return nil, err
	}

	restaurant, err := s.Restaurants.GetByID(ctx, in.restaurantID)
	if err != nil {
		return nil, err
	}
	menus, err := s.Menus.ListByIDs(ctx, restaurant.Menus)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Menu, len(menus))
	for _, m := range menus {
		byID[m.ID.Hex()] = m
	}

	items := make([]models.CartItem, 0, len(in.items))
	lines := make([]payment.SessionLine, 0, len(in.items))
	for _, item := range in.items {
		menu, ok := byID[item.MenuID]
		if !ok {
			s.logger.Error().
				Str("restaurant_id", restaurant.ID.Hex()).
				Str("menu_id", item.MenuID).
				Msg("cart references a menu the restaurant does not have")
			return nil, models.NewAppError(http.StatusInternalServerError, "Menu item not found: "+item.MenuID)
		}
		items = append(items, models.CartItem{
			MenuID:   item.MenuID,
			Name:     menu.Name,
			Image:    menu.Image,
			Price:    menu.Price,
			Quantity: item.Quantity,
		})
		lines = append(lines, payment.SessionLine{
			Name:           menu.Name,
			Image:          publicImage(menu.Image),
			UnitPriceMinor: models.ToMinorUnits(menu.Price),
			Quantity:       int64(item.Quantity),
		})
	}

	order := &models.Order{
		User:            actor.UserID,
		Restaurant:      restaurant.ID,
		DeliveryDetails: in.details,
		CartItems:       items,
		TotalAmount:     models.CartTotal(items),
		Status:          models.StatusPending,
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, err
	}

	sess, err := withTimeout(ctx, s.PaymentTimeout, func(ctx context.Context) (*payment.Session, error) {
		return s.Payments.CreateCheckoutSession(ctx, payment.SessionParams{
			Lines:      lines,
			Currency:   s.Currency,
			Email:      in.details.Email,
			SuccessURL: s.FrontendURL + "/order-status?success=true",
			CancelURL:  s.FrontendURL + "/detail/" + restaurant.ID.Hex() + "?cancelled=true",
			Metadata:   map[string]string{"orderId": order.ID.Hex()},
		})
	})
	if err != nil {
		// The order stays pending and is cancelled by the stale order sweep.
		s.logger.Error().Err(err).Str("order_id", order.ID.Hex()).Msg("failed to create checkout session")
		return nil, paymentErr(err)
	}

	if err := s.Orders.SetCheckoutSession(ctx, order.ID, sess.ID); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.Hex()).Msg("failed to store checkout session id")
		return nil, err
	}

	return &models.CheckoutSessionResult{URL: sess.URL, OrderID: order.ID.Hex()}, nil
}

func (s *orderService) HandlePaymentEvent(ctx context.Context, event *payment.Event) error {
	log := s.logger.With().Str("event_id", event.ID).Str("event_type", event.Type).Logger()

	var (
		sel    repository.OrderSelector
		change = repository.StatusChange{
			From: []models.OrderStatus{models.StatusPending},
			To:   models.StatusConfirmed,
		}
	)

	switch event.Type {
	case payment.EventCheckoutCompleted:
		id, err := primitive.ObjectIDFromHex(event.OrderID)
		if err != nil {
			log.Warn().Str("order_id", event.OrderID).Msg("checkout session without a valid order id")
			return nil
		}
		sel.ID = id
		if event.AmountTotalMinor > 0 {
			total := models.FromMinorUnits(event.AmountTotalMinor)
			change.TotalAmount = &total
			// the client may have confirmed first; the captured total still applies
			change.From = append(change.From, models.StatusConfirmed)
		}
	case payment.EventPaymentSucceeded:
		if event.PaymentIntentID == "" {
			log.Warn().Msg("payment intent event without an id")
			return nil
		}
		sel.PaymentIntentID = event.PaymentIntentID
	default:
		log.Debug().Msg("ignoring webhook event")
		return nil
	}

	before, err := s.Orders.ChangeStatus(ctx, sel, change)
	if err != nil {
		return err
	}
	if before == nil {
		log.Info().Msg("webhook matched no pending order, already processed")
		return nil
	}
	if before.Status != models.StatusPending {
		log.Info().Str("order_id", before.ID.Hex()).Msg("stored captured total on confirmed order")
		return nil
	}

	s.afterStatusChange(ctx, before, change.To, models.Actor{})
	log.Info().Str("order_id", before.ID.Hex()).Msg("order confirmed by payment processor")
	return nil
}

func (s *orderService) ConfirmOrder(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error) {
	id, err := parseID(orderID, models.ErrOrderNotFound)
	if err != nil {
		return nil, err
	}

	before, err := s.Orders.ChangeStatus(ctx,
		repository.OrderSelector{ID: id, UserID: actor.UserID},
		repository.StatusChange{From: []models.OrderStatus{models.StatusPending}, To: models.StatusConfirmed},
	)
	if err != nil {
		return nil, err
	}
	if before != nil {
		return s.afterStatusChange(ctx, before, models.StatusConfirmed, actor), nil
	}

	order, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.User != actor.UserID {
		return nil, models.ErrOrderNotFound
	}
	if order.Status == models.StatusConfirmed {
		return order, nil
	}
	return nil, badRequest("Cannot confirm order with status: %s", order.Status)
}

func (s *orderService) CancelOrder(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error) {
	id, err := parseID(orderID, models.ErrOrderNotFound)
	if err != nil {
		return nil, err
	}

	order, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.User != actor.UserID {
		return nil, models.ErrOrderNotFound
	}
	if !order.Status.Cancellable() {
		return nil, badRequest("Cannot cancel order with status: %s", order.Status)
	}

	before, err := s.Orders.ChangeStatus(ctx,
		repository.OrderSelector{ID: id, UserID: actor.UserID},
		repository.StatusChange{From: []models.OrderStatus{order.Status}, To: models.StatusCancelled},
	)
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, models.ErrConcurrentUpdate
	}

	return s.afterStatusChange(ctx, before, models.StatusCancelled, actor), nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, actor models.Actor, orderID, status string) (*models.Order, error) {
	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, models.ErrInvalidStatus
	}

	id, err := parseID(orderID, models.ErrOrderNotFound)
	if err != nil {
		return nil, err
	}
	order, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeRestaurant(ctx, actor, order); err != nil {
		return nil, err
	}

	if order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, badRequest("Cannot change order status from %s to %s", order.Status, next)
	}

	before, err := s.Orders.ChangeStatus(ctx,
		repository.OrderSelector{ID: id},
		repository.StatusChange{From: []models.OrderStatus{order.Status}, To: next},
	)
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, models.ErrConcurrentUpdate
	}

	return s.afterStatusChange(ctx, before, next, actor), nil
}

// authorizeRestaurant allows superadmins and the owner of the order's restaurant.
func (s *orderService) authorizeRestaurant(ctx context.Context, actor models.Actor, order *models.Order) error {
	if actor.IsSuperAdmin() {
		return nil
	}
	restaurant, err := s.Restaurants.GetByUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, models.ErrRestaurantNotFound) {
			return models.ErrForbidden
		}
		return err
	}
	if restaurant.ID != order.Restaurant {
		return models.ErrForbidden
	}
	return nil
}

func (s *orderService) Get(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error) {
	id, err := parseID(orderID, models.ErrOrderNotFound)
	if err != nil {
		return nil, err
	}
	order, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.User == actor.UserID {
		return order, nil
	}
	if err := s.authorizeRestaurant(ctx, actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListMine(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	return s.Orders.ListByUser(ctx, actor.UserID)
}

func (s *orderService) ListForRestaurant(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	restaurant, err := s.Restaurants.GetByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.Orders.ListByRestaurant(ctx, restaurant.ID)
}

func (s *orderService) History(ctx context.Context, actor models.Actor, orderID string) ([]models.OrderEvent, error) {
	order, err := s.Get(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	return s.OrderDeps.History.List(ctx, order.ID.Hex())
}

func (s *orderService) CancelStale(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := s.Orders.ListStalePending(ctx, cutoff, staleBatchSize)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, order := range stale {
		before, err := s.Orders.ChangeStatus(ctx,
			repository.OrderSelector{ID: order.ID},
			repository.StatusChange{From: []models.OrderStatus{models.StatusPending}, To: models.StatusCancelled},
		)
		if err != nil {
			return cancelled, err
		}
		if before == nil {
			continue
		}
		s.afterStatusChange(ctx, before, models.StatusCancelled, models.Actor{})
		cancelled++
	}
	return cancelled, nil
}

// afterStatusChange returns the order as it is now and emits the event for
// the transition. Leaving pending also evicts the dedup cache entry.
func (s *orderService) afterStatusChange(ctx context.Context, before *models.Order, to models.OrderStatus, actor models.Actor) *models.Order {
	now := s.Now().UTC()

	after := *before
	after.Status = to
	after.UpdatedAt = now

	if before.Status == models.StatusPending && s.Intents != nil {
		s.Intents.Forget(ctx, before.ID.Hex())
	}
	if s.Events != nil {
		s.Events.Publish(ctx, models.NewOrderEvent(&after, before.Status, actor.String(), now))
	}
	return &after
}
