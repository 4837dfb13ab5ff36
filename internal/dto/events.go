// Package dto holds the websocket wire types: the event envelope, the
// event name constants, and the inbound payload structs.
package dto

import "encoding/json"

// Inbound event names.
const (
	EvCreateRoom        = "create_room"
	EvSendJoinRequest   = "send_join_request"
	EvApproveJoin       = "approve_join"
	EvRejectJoin        = "reject_join"
	EvJoinRoom          = "join_room"
	EvSendMessage       = "send_message"
	EvTyping            = "typing"
	EvSecurityChanged   = "security_settings_changed"
	EvSecurityBroadcast = "security_settings_broadcast"
	EvStartCall         = "start_call"
	EvAcceptCall        = "accept_call"
	EvRejectCall        = "reject_call"
	EvEndCall           = "end_call"
	EvOffer             = "offer"
	EvAnswer            = "answer"
	EvICECandidate      = "ice_candidate"
	EvScreenShareStart  = "screen_share_started"
	EvScreenShareStop   = "screen_share_stopped"
	EvJoinCall          = "join_call"
	EvLeaveCall         = "leave_call"
	EvWebRTCOffer       = "webrtc_offer"
	EvWebRTCAnswer      = "webrtc_answer"
	EvWebRTCICE         = "webrtc_ice_candidate"
	EvMuteAudio         = "mute_audio"
	EvDisableVideo      = "disable_video"
)

// Outbound event names (those not shared with an inbound name).
const (
	EvRoomCreated       = "room_created"
	EvJoinRequestSent   = "join_request_sent"
	EvJoinRequestRecv   = "join_request_received"
	EvJoinApproved      = "join_approved"
	EvJoinApprovedNotif = "join_approved_notification"
	EvJoinRejected      = "join_rejected"
	EvJoinedRoom        = "joined_room"
	EvUserJoined        = "user_joined"
	EvUserLeft          = "user_left"
	EvNewMessage        = "new_message"
	EvUserTyping        = "user_typing"
	EvIncomingCall      = "incoming_call"
	EvCallStarted       = "call_started"
	EvCallAccepted      = "call_accepted"
	EvCallRejected      = "call_rejected"
	EvCallEnded         = "call_ended"
	EvUserJoinedCall    = "user_joined_call"
	EvUserLeftCall      = "user_left_call"
	EvUserMuted         = "user_muted"
	EvUserVideoDisabled = "user_video_disabled"
	EvError             = "error"
)

// Envelope is the frame exchanged in both directions:
// {"event": "<name>", "data": {...}}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Outbound is an envelope whose data is still a Go value; it is marshaled
// once at send time.
type Outbound struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// ErrorData is the payload of an "error" event.
type ErrorData struct {
	Message string `json:"message"`
}

// --- Inbound payloads ---

type CreateRoomData struct {
	RoomCode string `json:"roomCode"`
	UserName string `json:"userName"`
	RoomName string `json:"roomName,omitempty"`
}

type SendJoinRequestData struct {
	RoomCode      string `json:"roomCode"`
	UserName      string `json:"userName"`
	IsOneTimeLink bool   `json:"isOneTimeLink,omitempty"`
}

type ApproveJoinData struct {
	RequestID     string `json:"requestId"`
	RequesterID   string `json:"requesterId"`
	RoomCode      string `json:"roomCode"`
	RequesterName string `json:"requesterName"`
}

type RejectJoinData struct {
	RequestID   string `json:"requestId"`
	RequesterID string `json:"requesterId"`
}

type JoinRoomData struct {
	RoomCode string `json:"roomCode"`
	UserName string `json:"userName"`
	IsHost   bool   `json:"isHost,omitempty"`
}

type SendMessageData struct {
	RoomID     string `json:"roomId"`
	RoomCode   string `json:"roomCode"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Content    string `json:"content"`
	Type       string `json:"type,omitempty"`
	FileURL    string `json:"fileUrl,omitempty"`
	FileName   string `json:"fileName,omitempty"`
}

type TypingData struct {
	RoomCode string `json:"roomCode"`
	UserName string `json:"userName"`
	IsTyping bool   `json:"isTyping"`
}

type SecurityChangedData struct {
	RoomCode  string `json:"roomCode"`
	UserName  string `json:"userName"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type SecurityBroadcastData struct {
	RoomCode  string          `json:"roomCode"`
	Settings  json.RawMessage `json:"settings"`
	Timestamp string          `json:"timestamp"`
}

type StartCallData struct {
	RoomID     string `json:"roomId"`
	RoomCode   string `json:"roomCode"`
	CallerID   string `json:"callerId"`
	CallerName string `json:"callerName"`
	CallType   string `json:"callType"`
}

type CallUserData struct {
	RoomCode string `json:"roomCode"`
	UserID   string `json:"userId"`
	UserName string `json:"userName,omitempty"`
}

// RoomRelayData covers the room-scoped negotiation relays (offer, answer,
// ice_candidate, screen share). Payload fields pass through unvalidated.
type RoomRelayData struct {
	RoomCode  string          `json:"roomCode"`
	SenderID  string          `json:"senderId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// TargetRelayData covers the connection-addressed webrtc_* relays.
type TargetRelayData struct {
	TargetID  string          `json:"targetId"`
	SenderID  string          `json:"senderId,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type MuteData struct {
	RoomCode string `json:"roomCode"`
	UserID   string `json:"userId"`
	Muted    bool   `json:"muted"`
}

type VideoData struct {
	RoomCode string `json:"roomCode"`
	UserID   string `json:"userId"`
	Disabled bool   `json:"disabled"`
}

// --- Outbound payloads that need a fixed shape ---

// MessageData is the broadcast form of a chat message. IDs are strings on
// the wire regardless of which store produced them.
type MessageData struct {
	ID         string      `json:"_id"`
	RoomID     string      `json:"roomId"`
	SenderID   string      `json:"senderId"`
	SenderName string      `json:"senderName"`
	Content    string      `json:"content"`
	Type       string      `json:"type"`
	FileURL    string      `json:"fileUrl,omitempty"`
	FileName   string      `json:"fileName,omitempty"`
	CreatedAt  interface{} `json:"createdAt"`
	UpdatedAt  interface{} `json:"updatedAt"`
}
