package broker

import (
	"encoding/json"

	"github.com/luxcert/cert-services/internal/comm"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

type Broker struct {
	Conn             *nats.Conn
	GetConnection    func(string) (*websocket.Conn, bool)
	GetWalletSockets func(string) ([]string, bool)
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool),
	fncGetWalletSockets func(string) ([]string, bool)) *Broker {
	return &Broker{
		Conn:             conn,
		GetConnection:    fncGetConnection,
		GetWalletSockets: fncGetWalletSockets,
	}
}

// consume snapshot responses from the cert service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish message to cert service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages receives messages from the cert service
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case "certificate-rows":
		if message.SocketId != "" {
			b.sendMessage(message)
			return
		}
		b.fanOut(message)
	default:
		log.Error("Unknown message")
		return
	}
}

// fanOut delivers a wallet-wide snapshot to every watching socket.
func (b *Broker) fanOut(m *comm.WSMessage) {
	var rows comm.CertificateRows
	if err := json.Unmarshal(m.Data, &rows); err != nil {
		log.Errorf("Error %s", err)
		return
	}

	sockets, ok := b.GetWalletSockets(rows.Wallet)
	if !ok {
		return
	}

	for _, socketId := range sockets {
		out := &comm.WSMessage{
			Type:     m.Type,
			Data:     m.Data,
			SocketId: socketId,
		}
		b.sendMessage(out)
	}
}

// send socket message to the web client
func (b *Broker) sendMessage(m *comm.WSMessage) {
	socketId := m.SocketId
	if conn, ok := b.GetConnection(socketId); ok {
		if err := conn.WriteJSON(m); err != nil {
			log.Println(err)
		}
	}
}
