package constants

// Date layout used everywhere a delivery date crosses the API or DB.
const DateLayout = "2006-01-02"

// Meal type constants
const (
	MealTypeBreakfast = "breakfast"
	MealTypeLunch     = "lunch"
	MealTypeDinner    = "dinner"
)

// MealTypes ordered list of valid meal types.
var MealTypes = []string{MealTypeBreakfast, MealTypeLunch, MealTypeDinner}

// Same-day ordering closes at these server-local hours.
var MealCutoffHours = map[string]int{
	MealTypeBreakfast: 6,
	MealTypeLunch:     10,
	MealTypeDinner:    16,
}

// Order status constants
const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

// Order payment status constants
const (
	OrderPaymentStatusPending  = "pending"
	OrderPaymentStatusPaid     = "paid"
	OrderPaymentStatusFailed   = "failed"
	OrderPaymentStatusRefunded = "refunded"
)

// Payment attempt status constants
const (
	PaymentStatusCreated   = "created"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Order placement rules
const (
	OrderAdvanceDays    = 7 // orders accepted up to this many days ahead
	OrderNumberPrefix   = "MS"
	OrderNotesMaxLen    = 500
	CancelReasonMaxLen  = 200
	OrderHistoryMaxPage = 50 // page size cap for history queries
)

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Address label constants
const (
	AddressLabelHome  = "home"
	AddressLabelWork  = "work"
	AddressLabelOther = "other"
)

// Queue constants
const (
	QueueDefault          = "default"
	TaskOrderNotification = "order:notification"
	TaskCartCleanup       = "cart:cleanup"
)

// Cache constants
const (
	RedisPrefixDefault = "ms"
)

// Currency constants
const (
	SiteCurrencyDefault = "INR"
)
