package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/luxcert/cert-services/internal/certsvc/service"
	"github.com/luxcert/cert-services/internal/comm"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const (
	// requests forwarded by the socket service
	TopicSocketService = "socket.service"
	// snapshot responses and change pushes back to the socket service
	TopicCertService = "cert.service"
)

type Broker struct {
	Conn            *nats.Conn
	RegistryService *service.RegistryService
}

func NewBroker(nc *nats.Conn, registryService *service.RegistryService) *Broker {
	return &Broker{
		Conn:            nc,
		RegistryService: registryService,
	}
}

// SubscribeSocketService consumes registry requests from the socket service.
func (b *Broker) SubscribeSocketService(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// handles message coming from socket
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	err := json.Unmarshal(msgNat.Data, &msg)
	if err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	switch msg.Type {
	case "watch-certificates":
		var req comm.WatchCertificates
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			log.Errorf("Error %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		rows, err := b.RegistryService.Snapshot(ctx, req.Wallet)
		if err != nil {
			log.Errorf("Error [RegistryService.Snapshot] %s", err)
			return
		}

		b.PublishCertificateRows(comm.CertificateRows{Wallet: req.Wallet, Rows: rows}, msg.SocketId)
	default:
		log.Warnf("unknown message received: %s", msg.Type)
	}
}

// CertificatesChanged implements service.Notifier: every watcher of
// the wallet gets a freshly rebuilt snapshot pushed.
func (b *Broker) CertificatesChanged(wallet string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := b.RegistryService.Snapshot(ctx, wallet)
	if err != nil {
		log.Errorf("Error [RegistryService.Snapshot] %s", err)
		return
	}

	// no socket id: the socket service fans out to all watchers
	b.PublishCertificateRows(comm.CertificateRows{Wallet: wallet, Rows: rows}, "")
}

func (b *Broker) PublishCertificateRows(p comm.CertificateRows, socketId string) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Errorf("publishCertificateRows unable to marshal rows")
	}

	msg := &comm.WSMessage{
		Type:     "certificate-rows",
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
	}

	b.Publish(TopicCertService, payload)
}

// publish message to socket service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}
