package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks live websocket connections for drivers and customers. Delivery is
// best-effort: a disconnected peer just drops the event.
type Hub struct {
	mu         sync.RWMutex
	byDriver   map[string]*wsConn
	byCustomer map[string]*wsConn
}

func NewHub() *Hub {
	return &Hub{byDriver: make(map[string]*wsConn), byCustomer: make(map[string]*wsConn)}
}

// wsConn wraps a websocket connection with a write mutex to serialize writes.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (h *Hub) RegisterDriver(driverID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.byDriver[driverID]; ok {
		old.conn.Close()
	}
	h.byDriver[driverID] = &wsConn{conn: conn}
}

func (h *Hub) UnregisterDriver(driverID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.byDriver[driverID]; ok {
		c.conn.Close()
		delete(h.byDriver, driverID)
	}
}

// NotifyDriver sends a typed event payload to the driver if connected.
func (h *Hub) NotifyDriver(driverID string, event string, payload any) error {
	h.mu.RLock()
	wc, ok := h.byDriver[driverID]
	h.mu.RUnlock()
	if !ok {
		log.Printf("ws: driver %s not connected; drop event %s", driverID, event)
		return nil
	}
	msg := map[string]any{"event": event, "data": payload}
	wc.mu.Lock()
	defer wc.mu.Unlock()
	if err := wc.conn.WriteJSON(msg); err != nil {
		log.Printf("ws: write to driver %s failed for event %s: %v", driverID, event, err)
		return err
	}
	return nil
}

func (h *Hub) RegisterCustomer(customerID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.byCustomer[customerID]; ok {
		old.conn.Close()
	}
	h.byCustomer[customerID] = &wsConn{conn: conn}
}

func (h *Hub) UnregisterCustomer(customerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.byCustomer[customerID]; ok {
		c.conn.Close()
		delete(h.byCustomer, customerID)
	}
}

// NotifyCustomer sends an event to the customer if connected.
func (h *Hub) NotifyCustomer(customerID string, event string, payload any) error {
	h.mu.RLock()
	wc, ok := h.byCustomer[customerID]
	h.mu.RUnlock()
	if !ok {
		log.Printf("ws: customer %s not connected; drop event %s", customerID, event)
		return nil
	}
	msg := map[string]any{"event": event, "data": payload}
	wc.mu.Lock()
	defer wc.mu.Unlock()
	if err := wc.conn.WriteJSON(msg); err != nil {
		log.Printf("ws: write to customer %s failed for event %s: %v", customerID, event, err)
		return err
	}
	return nil
}

// OfferPayload is pushed to a driver when a dispatch offer is recorded.
type OfferPayload struct {
	OfferID         string     `json:"offer_id"`
	OrderID         string     `json:"order_id"`
	VendorName      string     `json:"vendor_name"`
	VendorAddress   string     `json:"vendor_address"`
	PickupLat       float64    `json:"pickup_lat"`
	PickupLng       float64    `json:"pickup_lng"`
	DropLat         float64    `json:"drop_lat"`
	DropLng         float64    `json:"drop_lng"`
	Items           []ItemLine `json:"items"`
	TotalPayable    float64    `json:"total_payable"`
	Earning         float64    `json:"earning"`
	TotalDistanceKm float64    `json:"total_distance_km"`
}

// ItemLine is one itemized row of an offer payload, with one representative image.
type ItemLine struct {
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url,omitempty"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

// OrderStatusPayload is sent to customers on status changes.
type OrderStatusPayload struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	ETA     string `json:"eta,omitempty"`
}

func Marshal(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
