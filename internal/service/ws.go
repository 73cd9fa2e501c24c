package service

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"egame-ws/internal/biz"

	"github.com/google/wire"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	kerrors "github.com/yola1107/kratos/v2/errors"
	"github.com/yola1107/kratos/v2/log"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(NewGameService)

var _json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// authCloseCode is sent when the handshake token is rejected.
	authCloseCode = 4001

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 4096
)

type clientMessage struct {
	ID      int64               `json:"id,omitempty"`
	Type    string              `json:"type"`
	Payload jsoniter.RawMessage `json:"payload,omitempty"`
}

type serverMessage struct {
	ID      int64         `json:"id,omitempty"`
	Type    string        `json:"type"`
	Payload interface{}   `json:"payload,omitempty"`
	Error   *errorPayload `json:"error,omitempty"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type spinRequest struct {
	Bet decimal.Decimal `json:"bet"`
}

type profileRequest struct {
	GameID int64 `json:"gameID"`
}

type logsRequest struct {
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
	Sort     string     `json:"sort"`
	DateFrom *time.Time `json:"dateFrom"`
	DateTo   *time.Time `json:"dateTo"`
}

// GameService owns the websocket protocol: one goroutine reads, requests
// are served strictly in arrival order, responses go out under a write
// lock so pings never interleave with payload frames.
type GameService struct {
	auth    *biz.AuthUsecase
	spin    *biz.SpinUsecase
	account *biz.AccountUsecase
	logs    *biz.LogUsecase
	cfg     *biz.ConfigUsecase
	log     *log.Helper

	upgrader websocket.Upgrader
}

func NewGameService(
	auth *biz.AuthUsecase,
	spin *biz.SpinUsecase,
	account *biz.AccountUsecase,
	logs *biz.LogUsecase,
	cfg *biz.ConfigUsecase,
	logger log.Logger,
) *GameService {
	return &GameService{
		auth:    auth,
		spin:    spin,
		account: account,
		logs:    logs,
		cfg:     cfg,
		log:     log.NewHelper(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// session is one authenticated connection.
type session struct {
	conn   *websocket.Conn
	writeM sync.Mutex

	playerID  int64
	partnerID int64
	gameID    int64
	username  string
}

func (s *session) write(msg *serverMessage) error {
	body, err := _json.Marshal(msg)
	if err != nil {
		return err
	}
	s.writeM.Lock()
	defer s.writeM.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, body)
}

// ServeWS upgrades, authenticates and runs the connection loop.
func (s *GameService) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("ws upgrade failed: %v", err)
		return
	}

	token := r.URL.Query().Get("token")
	gameID, _ := strconv.ParseInt(r.URL.Query().Get("gameId"), 10, 64)

	// Check gameId first: the token is one-time and a failed handshake
	// must not burn it over a missing query parameter.
	if gameID == 0 {
		s.rejectConn(conn)
		return
	}
	ident, err := s.auth.Authenticate(r.Context(), token)
	if err != nil {
		s.rejectConn(conn)
		return
	}

	sess := &session{
		conn:      conn,
		playerID:  ident.PlayerID,
		partnerID: ident.PartnerID,
		gameID:    gameID,
		username:  ident.Username,
	}
	s.log.Infof("ws open uid=%d pid=%d gid=%d", sess.playerID, sess.partnerID, sess.gameID)
	s.runSession(sess)
	s.log.Infof("ws close uid=%d gid=%d", sess.playerID, sess.gameID)
}

// rejectConn tells the client the token failed and closes with the auth
// close code. The reason stays server-side.
func (s *GameService) rejectConn(conn *websocket.Conn) {
	body, _ := _json.Marshal(&serverMessage{Type: "authError"})
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, body)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(authCloseCode, "auth failed"), time.Now().Add(writeWait))
	_ = conn.Close()
}

func (s *GameService) runSession(sess *session) {
	defer sess.conn.Close()

	sess.conn.SetReadLimit(maxMessageSize)
	_ = sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go s.pingLoop(sess, stopPing)

	for {
		_, raw, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warnf("ws read error uid=%d: %v", sess.playerID, err)
			}
			return
		}
		msg := &clientMessage{}
		if err = _json.Unmarshal(raw, msg); err != nil {
			s.writeError(sess, 0, "98", "malformed message")
			continue
		}
		// Requests on one connection are served strictly in order.
		s.dispatch(sess, msg)
	}
}

func (s *GameService) pingLoop(sess *session, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sess.writeM.Lock()
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := sess.conn.WriteMessage(websocket.PingMessage, nil)
			sess.writeM.Unlock()
			if err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

func (s *GameService) dispatch(sess *session, msg *clientMessage) {
	ctx := context.Background()
	switch msg.Type {
	case "spin":
		s.handleSpin(ctx, sess, msg)
	case "getProfile":
		s.handleProfile(ctx, sess, msg)
	case "getLogs":
		s.handleLogs(ctx, sess, msg)
	default:
		s.writeError(sess, msg.ID, "97", "unknown message type")
	}
}

func (s *GameService) handleSpin(ctx context.Context, sess *session, msg *clientMessage) {
	req := &spinRequest{}
	if len(msg.Payload) > 0 {
		if err := _json.Unmarshal(msg.Payload, req); err != nil {
			s.writeError(sess, msg.ID, "98", "malformed payload")
			return
		}
	}
	res, err := s.spin.Spin(ctx, sess.playerID, sess.gameID, sess.partnerID, req.Bet)
	if err != nil {
		s.writeBizError(sess, msg.ID, err)
		return
	}
	_ = sess.write(&serverMessage{ID: msg.ID, Type: "spinResult", Payload: packSpinResult(res)})
}

func (s *GameService) handleProfile(ctx context.Context, sess *session, msg *clientMessage) {
	req := &profileRequest{}
	if len(msg.Payload) > 0 {
		if err := _json.Unmarshal(msg.Payload, req); err != nil {
			s.writeError(sess, msg.ID, "98", "malformed payload")
			return
		}
	}
	gameID := sess.gameID
	if req.GameID != 0 {
		gameID = req.GameID
	}
	acct, err := s.account.Profile(ctx, sess.playerID, gameID)
	if err != nil {
		s.writeBizError(sess, msg.ID, err)
		return
	}
	_ = sess.write(&serverMessage{ID: msg.ID, Type: "profile", Payload: &profilePayload{
		PlayerID:  acct.PlayerID,
		Username:  acct.Username,
		Balance:   acct.Balance,
		FreeSpins: acct.FreeSpins,
	}})
}

func (s *GameService) handleLogs(ctx context.Context, sess *session, msg *clientMessage) {
	req := &logsRequest{}
	if len(msg.Payload) > 0 {
		if err := _json.Unmarshal(msg.Payload, req); err != nil {
			s.writeError(sess, msg.ID, "98", "malformed payload")
			return
		}
	}
	views, err := s.logs.Fetch(ctx, &biz.LogQuery{
		PlayerID:  sess.playerID,
		GameID:    sess.gameID,
		PartnerID: sess.partnerID,
		Limit:     req.Limit,
		Offset:    req.Offset,
		Sort:      req.Sort,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
	})
	if err != nil {
		s.writeBizError(sess, msg.ID, err)
		return
	}
	if views == nil {
		views = []*biz.SpinLogView{}
	}
	_ = sess.write(&serverMessage{ID: msg.ID, Type: "logs", Payload: &logsPayload{Records: views}})
}

// wireCodes maps error reasons onto the protocol's short codes.
var wireCodes = map[string]string{
	biz.ErrInsufficientFunds.Reason: "01",
	biz.ErrInvalidBet.Reason:        "02",
	biz.ErrUnknownGame.Reason:       "03",
	biz.ErrConfigUnavailable.Reason: "04",
}

func (s *GameService) writeBizError(sess *session, id int64, err error) {
	ke := kerrors.FromError(err)
	code, ok := wireCodes[ke.Reason]
	if !ok {
		code = "99"
	}
	s.writeError(sess, id, code, ke.Message)
}

func (s *GameService) writeError(sess *session, id int64, code, message string) {
	_ = sess.write(&serverMessage{ID: id, Type: "error", Error: &errorPayload{Code: code, Message: message}})
}

// ServeInvalidate is the admin hook: POST ?gameId=&partnerId= broadcasts a
// config invalidation.
func (s *GameService) ServeInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	gameID, _ := strconv.ParseInt(r.URL.Query().Get("gameId"), 10, 64)
	partnerID, _ := strconv.ParseInt(r.URL.Query().Get("partnerId"), 10, 64)
	if err := s.cfg.Invalidate(r.Context(), gameID, partnerID); err != nil {
		ke := kerrors.FromError(err)
		w.WriteHeader(int(ke.Code))
		_, _ = w.Write([]byte(ke.Reason))
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("ok"))
}
