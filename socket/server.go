package socket

import (
	"log"

	socketio "github.com/googollee/go-socket.io"
)

// Server pushes freshly generated recommendations to connected clients.
// Clients join a room named after their user id.
type Server struct {
	*socketio.Server
}

// NewSocketServer initializes and returns a new Socket.IO server
func NewSocketServer() *Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("Socket connected:", c.ID())
		return nil
	})

	server.OnEvent("/", "join", func(c socketio.Conn, userID string) {
		if userID == "" {
			log.Println("Invalid userId in join request")
			return
		}
		log.Printf("Socket %s joined room %s\n", c.ID(), userID)
		c.Join(userID)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("Socket disconnected:", c.ID(), reason)
	})

	return &Server{Server: server}
}

// NotifyRecommendation broadcasts a new recommendation to the user's room.
func (s *Server) NotifyRecommendation(userID, recommendedUserID string) {
	s.BroadcastToRoom("/", userID, "newRecommendation", map[string]string{
		"userId":         userID,
		"recommendation": recommendedUserID,
	})
}
