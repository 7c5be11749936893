package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"cribbage-live-go/internal/auth"
	"cribbage-live-go/internal/config"
	"cribbage-live-go/internal/service"
	ws "cribbage-live-go/pkg/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			// Non-browser clients (no Origin) are allowed.
			return true
		}
		if cfgDevAllowAll() {
			return true
		}
		if cfgIsDev() {
			return isLocalhostOrigin(origin) || isAllowedOrigin(origin)
		}
		return isAllowedOrigin(origin)
	},
}

// set by config at startup
var originMu sync.RWMutex
var allowedOrigins = map[string]bool{}
var devMode = false
var devAllowAll = false

func SetWebSocketOriginPolicy(isDev bool, allowAllDev bool, origins []string) {
	originMu.Lock()
	defer originMu.Unlock()
	devMode = isDev
	devAllowAll = allowAllDev
	allowedOrigins = map[string]bool{}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			allowedOrigins[o] = true
		}
	}
}

func cfgIsDev() bool {
	originMu.RLock()
	defer originMu.RUnlock()
	return devMode
}
func cfgDevAllowAll() bool {
	originMu.RLock()
	defer originMu.RUnlock()
	return devMode && devAllowAll
}
func isAllowedOrigin(origin string) bool {
	originMu.RLock()
	defer originMu.RUnlock()
	return allowedOrigins[origin]
}

func isLocalhostOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// WebSocketHandler authenticates the session token, upgrades the connection,
// and joins the player to their game's room. The token already names the game,
// so there is no room parameter to validate.
func WebSocketHandler(hubProv func() (*ws.Hub, bool), svc *service.GameService, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := wsToken(c, cfg)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := auth.ParseAndValidateToken(token, cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// Confirm the seat still exists before attempting the upgrade so we can
		// return HTTP errors normally.
		seat, err := svc.Seat(claims.GameID, claims.PlayerID)
		if err != nil {
			writeAPIError(c, err)
			return
		}
		hub, ok := hubProv()
		if !ok || hub == nil {
			log.Printf("WebSocketHandler hubProvider returned nil: player_id=%s game_id=%s", claims.PlayerID, claims.GameID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocketHandler upgrade failed: method=%s path=%s remote=%s origin=%q err=%v",
				c.Request.Method, c.Request.URL.Path, c.ClientIP(), c.Request.Header.Get("Origin"), err,
			)
			return
		}

		room := gameRoom(claims.GameID)
		client := ws.NewClient(conn, hub, room, claims.PlayerID, seat)
		hub.Register(client)

		if err := svc.SetConnected(claims.GameID, claims.PlayerID, true); err != nil {
			log.Printf("set connected failed: player_id=%s err=%v", claims.PlayerID, err)
		}
		broadcastPlayerStatus(claims.GameID, seat, claims.Name, true)

		go client.WritePump()
		go func() {
			client.ReadPump(func(msg []byte) {
				handleWSMessage(client, svc, claims, msg)
			})
			// ReadPump only returns once the connection is gone.
			if err := svc.SetConnected(claims.GameID, claims.PlayerID, false); err != nil {
				log.Printf("set disconnected failed: player_id=%s err=%v", claims.PlayerID, err)
			}
			broadcastPlayerStatus(claims.GameID, seat, claims.Name, false)
		}()

		sendDirect(client, "connected", map[string]any{
			"player_id": claims.PlayerID,
			"game_id":   claims.GameID,
			"seat":      seat,
		})
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// handleWSMessage routes one inbound game command. Every command replies
// directly with an ack or error; game-visible effects are broadcast to the
// room by the same helpers the REST handlers use.
func handleWSMessage(client *ws.Client, svc *service.GameService, claims *auth.Claims, msg []byte) {
	var in inboundMessage
	if err := json.Unmarshal(msg, &in); err != nil {
		sendDirect(client, "error", map[string]any{"error": "invalid json"})
		return
	}

	gameID, playerID := claims.GameID, claims.PlayerID

	switch in.Type {
	case "start_game":
		res, err := svc.StartRound(gameID, playerID)
		if err != nil {
			sendCommandError(client, in.Type, err)
			return
		}
		broadcastRoundStarted(gameID, res)
		sendDirect(client, "start_game_ok", map[string]any{"round_number": res.RoundNumber})

	case "discard":
		var p struct {
			Cards []string `json:"cards"`
		}
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			sendDirect(client, "error", map[string]any{"error": "invalid json"})
			return
		}
		res, snap, err := svc.Discard(gameID, playerID, p.Cards)
		if err != nil {
			sendCommandError(client, in.Type, err)
			return
		}
		broadcastDiscard(gameID, client.Seat, res, snap)
		sendDirect(client, "discard_ok", res)

	case "cut":
		res, snap, err := svc.Cut(gameID, playerID)
		if err != nil {
			sendCommandError(client, in.Type, err)
			return
		}
		broadcastCut(gameID, res, snap)
		sendDirect(client, "cut_ok", res)

	case "peg":
		var p struct {
			Card string `json:"card"`
		}
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			sendDirect(client, "error", map[string]any{"error": "invalid json"})
			return
		}
		res, snap, err := svc.PlayCard(gameID, playerID, p.Card)
		if err != nil {
			sendCommandError(client, in.Type, err)
			return
		}
		broadcastPegPlay(gameID, client.Seat, res, snap)
		sendDirect(client, "peg_ok", res)

	case "go":
		res, snap, err := svc.DeclareGo(gameID, playerID)
		if err != nil {
			sendCommandError(client, in.Type, err)
			return
		}
		broadcastPegGo(gameID, client.Seat, res, snap)
		sendDirect(client, "go_ok", res)

	case "score_hands":
		results, snap, err := svc.ScoreHands(gameID, playerID)
		if err != nil {
			sendCommandError(client, in.Type, err)
			return
		}
		broadcastHandScores(gameID, results, snap)
		sendDirect(client, "score_hands_ok", map[string]any{"results": results})

	case "valid_plays":
		plays, err := svc.ValidPlays(gameID, playerID)
		if err != nil {
			sendCommandError(client, in.Type, err)
			return
		}
		sendDirect(client, "valid_plays", map[string]any{"valid_plays": plays})

	case "sync":
		snap, err := svc.Snapshot(gameID, playerID)
		if err != nil {
			sendCommandError(client, in.Type, err)
			return
		}
		sendDirect(client, "state_sync", snap)

	default:
		sendDirect(client, "error", map[string]any{"error": "unknown message type"})
	}
}

// sendCommandError maps sentinel errors to the same safe messages the REST
// layer uses; unknown errors stay generic.
func sendCommandError(client *ws.Client, command string, err error) {
	status, msg := apiErrorStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("ws command error: command=%s player_id=%s err=%v", command, client.PlayerID, err)
	}
	sendDirect(client, "error", map[string]any{"command": command, "error": msg})
}

// sendDirect replies to one connection via the hub goroutine; writing the
// Send channel from here would race the hub closing it on backpressure.
func sendDirect(c *ws.Client, typ string, payload any) {
	c.Hub.SendToClient(c, typ, payload)
}

func wsToken(c *gin.Context, cfg config.Config) string {
	authz := c.GetHeader("Authorization")
	if authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if v, err := c.Cookie(auth.SessionCookieName); err == nil {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	if cfg.WSAllowQueryTokens {
		return strings.TrimSpace(c.Query("token"))
	}
	return ""
}
