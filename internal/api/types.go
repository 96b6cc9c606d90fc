package api

import (
	"time"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

// errorResponse is the backend's error payload shape.
type errorResponse struct {
	Message string `json:"message"`
}

// loginRequest is the credential payload for POST /api/auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse carries the session token and the authenticated user.
type loginResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type userDTO struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar"`
}

func (d userDTO) toModel() model.User {
	return model.User{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		AvatarURL: d.AvatarURL,
	}
}

type projectDTO struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner"`
	MemberIDs   []string  `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (d projectDTO) toModel() model.Project {
	return model.Project{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		OwnerID:     d.OwnerID,
		MemberIDs:   append([]string(nil), d.MemberIDs...),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type taskDTO struct {
	ID          string     `json:"_id"`
	ListID      string     `json:"list"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Assignees   []string   `json:"members"`
	Labels      []string   `json:"labels"`
	StartDate   *time.Time `json:"startDate"`
	DueDate     *time.Time `json:"endDate"`
	CoverURL    string     `json:"cover"`
}

func (d taskDTO) toModel() model.Task {
	return model.Task{
		ID:          d.ID,
		ListID:      d.ListID,
		Name:        d.Name,
		Description: d.Description,
		Assignees:   append([]string(nil), d.Assignees...),
		Labels:      append([]string(nil), d.Labels...),
		StartDate:   d.StartDate,
		DueDate:     d.DueDate,
		CoverURL:    d.CoverURL,
	}
}

type listDTO struct {
	ID        string    `json:"_id"`
	ProjectID string    `json:"project"`
	Name      string    `json:"name"`
	Tasks     []taskDTO `json:"tasks"`
}

func (d listDTO) toModel() model.List {
	l := model.List{
		ID:        d.ID,
		ProjectID: d.ProjectID,
		Name:      d.Name,
		Tasks:     make([]model.Task, len(d.Tasks)),
	}
	for i, t := range d.Tasks {
		l.Tasks[i] = t.toModel()
	}
	return l
}

// boardResponse is the payload of GET /api/projects/{id}/board: the
// ordered list sequence with tasks nested in column order.
type boardResponse struct {
	Lists []listDTO `json:"lists"`
}

type channelDTO struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	ProjectID string `json:"project"`
}

func (d channelDTO) toModel() model.Channel {
	return model.Channel{ID: d.ID, Name: d.Name, ProjectID: d.ProjectID}
}

type messageDTO struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"sender"`
	Body       string    `json:"text"`
	FileURL    string    `json:"file"`
	ChannelID  string    `json:"channel"`
	ReceiverID string    `json:"receiver"`
	CreatedAt  time.Time `json:"createdAt"`
	Read       bool      `json:"isRead"`
}

// toModel resolves the message's conversation key. Direct messages
// carry the peer the local user talks to, which is the sender for
// inbound messages and the receiver for echoes of our own.
func (d messageDTO) toModel(selfID string) model.ChatMessage {
	target := model.Target{Kind: model.TargetChannel, ID: d.ChannelID}
	if d.ChannelID == "" {
		peer := d.SenderID
		if peer == selfID {
			peer = d.ReceiverID
		}
		target = model.Target{Kind: model.TargetDirect, ID: peer}
	}
	return model.ChatMessage{
		ID:        d.ID,
		SenderID:  d.SenderID,
		Body:      d.Body,
		FileURL:   d.FileURL,
		Target:    target,
		CreatedAt: d.CreatedAt,
		Read:      d.Read,
	}
}

// sendMessageRequest is the payload for POST /api/messages.
type sendMessageRequest struct {
	ChannelID  string `json:"channel,omitempty"`
	ReceiverID string `json:"receiver,omitempty"`
	Body       string `json:"text"`
	FileURL    string `json:"file,omitempty"`
}

// moveTaskRequest is the payload for PUT /api/tasks/{id}/move: the new
// (list, index) pair after an accepted local move.
type moveTaskRequest struct {
	ListID string `json:"list"`
	Index  int    `json:"index"`
}

type createListRequest struct {
	ProjectID string `json:"project"`
	Name      string `json:"name"`
}

type renameListRequest struct {
	Name string `json:"name"`
}

type createTaskRequest struct {
	ListID string `json:"list"`
	Name   string `json:"name"`
}

// updateTaskRequest mirrors model.TaskPatch on the wire: absent fields
// are left untouched by the server.
type updateTaskRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Assignees   *[]string  `json:"members,omitempty"`
	Labels      *[]string  `json:"labels,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	DueDate     *time.Time `json:"endDate,omitempty"`
	CoverURL    *string    `json:"cover,omitempty"`
}

type presenceResponse struct {
	Online []string `json:"online"`
}
