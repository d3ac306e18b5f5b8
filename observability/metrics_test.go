package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chat-relay/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordRouted(t *testing.T) {
	req := require.New(t)
	c := NewCollector(prometheus.NewRegistry())

	c.RecordRouted(domain.KindPrivateMessage, domain.DroppedReceiverOffline)
	c.RecordRouted(domain.KindPrivateMessage, domain.DroppedReceiverOffline)
	c.RecordRouted(domain.KindChat, domain.Delivered)

	req.Equal(2.0, testutil.ToFloat64(c.routed.WithLabelValues("PRIVATE_MESSAGE", "dropped-receiver-offline")))
	req.Equal(1.0, testutil.ToFloat64(c.routed.WithLabelValues("CHAT", "delivered")))
}

func TestCollector_DeliveryFailureLabels(t *testing.T) {
	req := require.New(t)
	c := NewCollector(prometheus.NewRegistry())

	c.RecordDeliveryFailure(domain.Broadcast)
	c.RecordDeliveryFailure(domain.PrivateDestination("bob"))
	c.RecordDeliveryFailure(domain.PrivateDestination("alice"))

	req.Equal(1.0, testutil.ToFloat64(c.deliveryFailures.WithLabelValues("broadcast")))
	req.Equal(2.0, testutil.ToFloat64(c.deliveryFailures.WithLabelValues("private")))
}

func TestCollector_Connections(t *testing.T) {
	req := require.New(t)
	c := NewCollector(prometheus.NewRegistry())

	c.RecordConnectionOpened()
	c.RecordConnectionOpened()
	c.RecordConnectionClosed()
	c.SetOnlineUsers(5)

	req.Equal(1.0, testutil.ToFloat64(c.activeConnections))
	req.Equal(5.0, testutil.ToFloat64(c.onlineUsers))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	req := require.New(t)
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPRequest("/users/online", http.StatusOK, 10*time.Millisecond)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	req.NoError(err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	req.NoError(err)
	req.Contains(string(body), `chat_http_requests_total{route="/users/online",status_code="200"} 1`)
}
