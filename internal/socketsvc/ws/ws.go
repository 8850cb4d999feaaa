package ws

import (
	"encoding/json"
	"sync"

	"github.com/luxcert/cert-services/internal/comm"
	"github.com/luxcert/cert-services/internal/socketsvc/broker"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

type Ws struct {
	connMap   sync.Map // to keep track of socket connection with socketId
	walletMap sync.Map // to keep track of wallet with watching socketIds
	Broker    *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "watch-certificates":
		s.handleWatch(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

// handleWatch registers the socket as a watcher of the wallet and
// forwards the request so the cert service answers with a snapshot.
func (s *Ws) handleWatch(socketId string, msg *comm.WSMessage) {
	var req comm.WatchCertificates
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Errorf("Error: invalid_watch_data Malformed watch payload %s", err)
		return
	}

	// no wallet means no session: nothing to watch, not an error
	if req.Wallet == "" || req.Wallet == "0x0" {
		log.Info("No wallet found. Please login to view certificates.")
		return
	}

	s.registerWatcher(req.Wallet, socketId)

	msg.SocketId = socketId

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	topic := "socket.service"
	if err := s.Broker.Publish(topic, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", topic, err)
		return
	}

	log.Infof("Published watch request for wallet %s to topic %s", req.Wallet, topic)
}

func (s *Ws) registerWatcher(wallet, socketId string) {
	set, _ := s.walletMap.LoadOrStore(wallet, &sync.Map{})
	set.(*sync.Map).Store(socketId, struct{}{})
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	v, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return v.(*websocket.Conn), true
}

// GetWalletSockets lists the socket ids currently watching a wallet.
func (s *Ws) GetWalletSockets(wallet string) ([]string, bool) {
	v, ok := s.walletMap.Load(wallet)
	if !ok {
		return nil, false
	}

	var sockets []string
	v.(*sync.Map).Range(func(key, _ any) bool {
		sockets = append(sockets, key.(string))
		return true
	})

	return sockets, len(sockets) > 0
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)

	s.walletMap.Range(func(_, value any) bool {
		value.(*sync.Map).Delete(socketId)
		return true
	})
}
