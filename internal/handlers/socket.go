package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/manishhsuthar/EduConnect/internal/database"
	"github.com/manishhsuthar/EduConnect/internal/models"
	"github.com/manishhsuthar/EduConnect/internal/policy"
	"github.com/manishhsuthar/EduConnect/internal/presence"
	"github.com/manishhsuthar/EduConnect/internal/store"
	"github.com/manishhsuthar/EduConnect/pkg/logger"
	"github.com/manishhsuthar/EduConnect/pkg/utils"
)

// historyLimit is how many recent messages a joining connection receives.
const historyLimit = 20

// Gateway is the process-wide chat gateway, set once at startup so the
// HTTP handlers can push real-time notifications.
var Gateway *ChatGateway

// Identity is the authenticated principal bound to a socket connection
// during the connect handshake. Connections without one may stay open
// but every join/post is rejected.
type Identity struct {
	UserID     string
	Username   string
	Role       models.Role
	Department string
}

func (id *Identity) user() *models.User {
	return &models.User{
		ID:         id.UserID,
		Username:   id.Username,
		Role:       id.Role,
		Department: id.Department,
	}
}

// session is the slice of socketio.Conn the gateway touches, narrowed so
// the event handlers can be exercised with fakes.
type session interface {
	ID() string
	URL() url.URL
	Join(room string)
	Leave(room string)
	LeaveAll()
	Emit(event string, args ...interface{})
	Context() interface{}
	SetContext(v interface{})
}

// roomBroadcaster fans an event out to every connection subscribed to a
// room. *socketio.Server satisfies it.
type roomBroadcaster interface {
	BroadcastToRoom(namespace string, room, event string, args ...interface{}) bool
}

type messagePayload struct {
	ConversationID string             `json:"conversationId"`
	Text           string             `json:"text"`
	Attachment     *models.Attachment `json:"attachment"`

	// Legacy clients send the text under "message".
	Message string `json:"message"`
}

type messageView struct {
	ID             string               `json:"id"`
	ConversationID string               `json:"conversationId"`
	Sender         models.PublicProfile `json:"sender"`
	Text           string               `json:"text,omitempty"`
	Attachment     *models.Attachment   `json:"attachment,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
}

func newMessageView(m models.Message) messageView {
	view := messageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         m.Sender.Public(),
		Text:           m.Text,
		CreatedAt:      m.CreatedAt,
	}
	if m.HasAttachment() {
		att := m.Attachment
		view.Attachment = &att
	}
	return view
}

type roomMessagesPayload struct {
	Room     string        `json:"room"`
	Messages []messageView `json:"messages"`
}

// ChatGateway binds live socket connections to conversations: it
// authenticates the handshake, authorizes joins and posts, persists
// accepted messages and fans the stored copy out to room subscribers.
type ChatGateway struct {
	store    *store.Store
	presence *presence.Tracker
	bc       roomBroadcaster
}

func NewChatGateway(st *store.Store, tracker *presence.Tracker) *ChatGateway {
	return &ChatGateway{store: st, presence: tracker}
}

// NewSocketServer wires the gateway onto a fresh socket.io server and
// starts serving it.
func (g *ChatGateway) NewSocketServer() *socketio.Server {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
			&polling.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
		},
	})
	g.bc = server

	server.OnConnect("/", func(s socketio.Conn) error {
		return g.handleConnect(s)
	})

	server.OnEvent("/", "join-room", func(s socketio.Conn, conversationID string) {
		g.handleJoinRoom(s, conversationID)
	})

	server.OnEvent("/", "leave-room", func(s socketio.Conn, conversationID string) {
		g.handleLeaveRoom(s, conversationID)
	})

	server.OnEvent("/", "message", func(s socketio.Conn, payload messagePayload) {
		g.handleMessage(s, payload)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		g.handleDisconnect(s)
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		logger.Warn().Err(e).Msg("Socket error")
	})

	go func() {
		if err := server.Serve(); err != nil {
			logger.Error().Err(err).Msg("Socket server stopped")
		}
	}()

	return server
}

// handleConnect resolves the handshake token into an Identity. A missing
// or invalid token leaves the connection open but inert: joins and posts
// on it are rejected until the client reconnects with a valid token.
func (g *ChatGateway) handleConnect(s session) error {
	connURL := s.URL()
	token := connURL.Query().Get("token")
	if token == "" {
		token = connURL.Query().Get("auth_token")
	}
	if token == "" {
		logger.Debug().Str("socket", s.ID()).Msg("Socket connected without token")
		return nil
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		logger.Warn().Str("socket", s.ID()).Msg("Socket connected with invalid token")
		return nil
	}

	user, err := g.store.GetUser(claims.UserID)
	if err != nil {
		logger.Warn().Str("socket", s.ID()).Str("user_id", claims.UserID).Msg("Socket token for unknown user")
		return nil
	}

	identity := &Identity{
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
		Department: user.Department,
	}
	s.SetContext(identity)

	// Personal room for targeted notifications, shared room for
	// presence updates.
	s.Join(identity.UserID)
	s.Join("presence")

	if g.presence.MarkConnected(identity.UserID) {
		g.broadcastPresence(identity.UserID, true)
	}
	s.Emit("online_users", g.presence.OnlineUserIDs())

	logger.Info().Str("socket", s.ID()).Str("user_id", identity.UserID).Msg("Socket authenticated")
	return nil
}

func (g *ChatGateway) handleJoinRoom(s session, conversationID string) {
	identity := identityOf(s)
	if identity == nil {
		emitError(s, "authentication required")
		return
	}
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		emitError(s, "conversation id is required")
		return
	}

	conv, err := g.store.GetConversation(conversationID)
	if err == store.ErrConversationNotFound {
		emitError(s, "Conversation not found")
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to load conversation")
		emitError(s, "Failed to load conversation")
		return
	}

	if !g.mayRead(identity, conv) {
		emitError(s, "Not authorized to access this conversation")
		return
	}

	s.Join(conversationID)

	messages, err := g.store.RecentMessages(conversationID, historyLimit)
	if err != nil {
		logger.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to load room history")
		emitError(s, "Failed to load messages")
		return
	}

	views := make([]messageView, len(messages))
	for i, m := range messages {
		views[i] = newMessageView(m)
	}
	s.Emit("room-messages", roomMessagesPayload{Room: conversationID, Messages: views})
}

func (g *ChatGateway) handleLeaveRoom(s session, conversationID string) {
	if strings.TrimSpace(conversationID) == "" {
		return
	}
	s.Leave(conversationID)
}

// handleMessage persists an inbound post and broadcasts the stored,
// sender-enriched copy to the room. Broadcast happens strictly after the
// write succeeds; any failure is reported to the submitter alone.
func (g *ChatGateway) handleMessage(s session, payload messagePayload) {
	identity := identityOf(s)
	if identity == nil {
		emitError(s, "authentication required")
		return
	}
	conversationID := strings.TrimSpace(payload.ConversationID)
	if conversationID == "" {
		emitError(s, "conversation id is required")
		return
	}

	// Per-user limit; the IP limiter does not see individual socket events.
	if database.Redis != nil {
		ok, err := database.CheckRateLimit("chat:"+identity.UserID, 30, time.Minute)
		if err == nil && !ok {
			emitError(s, "You are sending messages too quickly")
			return
		}
	}

	text := payload.Text
	if text == "" {
		text = payload.Message
	}
	if text != "" {
		sanitized, err := SanitizeMessageContent(text)
		if err != nil {
			emitError(s, err.Error())
			return
		}
		text = sanitized
	}

	conv, err := g.store.GetConversation(conversationID)
	if err == store.ErrConversationNotFound {
		emitError(s, "Conversation not found")
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to load conversation")
		emitError(s, "Failed to load conversation")
		return
	}

	if conv.IsGroup() {
		actor := identity.user()
		if !policy.CanAccessRoom(actor, conv) {
			emitError(s, "Not authorized to access this room")
			return
		}
		if !policy.CanPostInRoom(actor, conv, text != "") {
			emitError(s, "Only faculty can post in Announcements")
			return
		}
	} else if !conv.HasParticipant(identity.UserID) {
		emitError(s, "Not authorized to view this conversation")
		return
	}

	msg, err := g.store.AppendMessage(conversationID, identity.UserID, text, payload.Attachment)
	switch err {
	case nil:
	case store.ErrEmptyMessage, store.ErrTextAndAttachment, store.ErrAttachmentType, store.ErrAttachmentTooLarge:
		emitError(s, err.Error())
		return
	default:
		logger.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to save message")
		emitError(s, "Failed to save message")
		return
	}

	g.bc.BroadcastToRoom("/", conversationID, "message", newMessageView(*msg))
}

func (g *ChatGateway) handleDisconnect(s session) {
	s.LeaveAll()

	identity := identityOf(s)
	if identity == nil {
		return
	}
	if g.presence.MarkDisconnected(identity.UserID) {
		g.broadcastPresence(identity.UserID, false)
	}
}

func (g *ChatGateway) mayRead(identity *Identity, conv *models.Conversation) bool {
	if conv.IsGroup() {
		return policy.CanAccessRoom(identity.user(), conv)
	}
	return conv.HasParticipant(identity.UserID)
}

func (g *ChatGateway) broadcastPresence(userID string, isOnline bool) {
	g.bc.BroadcastToRoom("/", "presence", "presence_update", map[string]interface{}{
		"userId":   userID,
		"isOnline": isOnline,
	})
}

// BroadcastMessage fans a stored message out to the room's subscribers.
// Used by the HTTP post path so REST and socket clients see the same
// stream.
func (g *ChatGateway) BroadcastMessage(m *models.Message) {
	if g == nil || g.bc == nil {
		return
	}
	g.bc.BroadcastToRoom("/", m.ConversationID, "message", newMessageView(*m))
}

// NotifyUser pushes a notification event to every connection the user
// has open.
func (g *ChatGateway) NotifyUser(userID string, notification *models.Notification) {
	if g == nil || g.bc == nil {
		return
	}
	g.bc.BroadcastToRoom("/", userID, "notification", notification)
}

func identityOf(s session) *Identity {
	identity, _ := s.Context().(*Identity)
	return identity
}

func emitError(s session, message string) {
	s.Emit("error", map[string]string{"message": message})
}

// SocketHandler wraps the socket.io server for gin.
func SocketHandler(server *socketio.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		server.ServeHTTP(c.Writer, c.Request)
	}
}
