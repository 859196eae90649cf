package client

import (
	"context"
	"sync"

	"inkbytr/internal/dto"

	"github.com/google/uuid"
)

type Phase int

const (
	PhasePending Phase = iota
	PhaseFulfilled
	PhaseRejected
)

type ActionKind string

const (
	ActionFetchPosts    ActionKind = "posts/fetchAll"
	ActionFetchPost     ActionKind = "posts/fetchOne"
	ActionFetchMyPosts  ActionKind = "posts/fetchMine"
	ActionCreatePost    ActionKind = "posts/create"
	ActionUpdatePost    ActionKind = "posts/update"
	ActionDeletePost    ActionKind = "posts/delete"
	ActionLikePost      ActionKind = "posts/like"
	ActionUnlikePost    ActionKind = "posts/unlike"
	ActionAddComment    ActionKind = "posts/addComment"
	ActionDeleteComment ActionKind = "posts/deleteComment"
)

type Action struct {
	Kind    ActionKind
	Phase   Phase
	Payload any
	Err     error
}

// State is the entity cache. Mutations land only when a definitive
// outcome arrives; there is no speculative update to roll back.
type State struct {
	Posts   []dto.PostResponse
	MyPosts []dto.PostResponse
	Detail  *dto.PostResponse
	Loading bool
	Err     error
}

type LikePayload struct {
	PostID string
	UserID string
}

type CommentsPayload struct {
	PostID   string
	Comments []dto.CommentResponse
}

type CommentRemovedPayload struct {
	PostID    string
	CommentID string
}

// Reduce is a pure transition function keyed by (kind, phase). Affected
// slices are copied, never mutated in place, so a held State snapshot
// stays valid.
func Reduce(state State, action Action) State {
	switch action.Phase {
	case PhasePending:
		return reducePending(state, action)
	case PhaseRejected:
		state.Loading = false
		state.Err = action.Err
		return state
	case PhaseFulfilled:
		return reduceFulfilled(state, action)
	}
	return state
}

func reducePending(state State, action Action) State {
	switch action.Kind {
	case ActionFetchPosts, ActionFetchMyPosts:
		state.Loading = true
		state.Err = nil
	case ActionFetchPost:
		state.Loading = true
		state.Detail = nil
		state.Err = nil
	}
	return state
}

func reduceFulfilled(state State, action Action) State {
	state.Loading = false
	state.Err = nil

	switch action.Kind {
	case ActionFetchPosts:
		state.Posts = action.Payload.([]dto.PostResponse)

	case ActionFetchMyPosts:
		state.MyPosts = action.Payload.([]dto.PostResponse)

	case ActionFetchPost:
		post := action.Payload.(dto.PostResponse)
		state.Detail = &post

	case ActionCreatePost:
		post := action.Payload.(dto.PostResponse)
		posts := make([]dto.PostResponse, 0, len(state.Posts)+1)
		posts = append(posts, post)
		posts = append(posts, state.Posts...)
		state.Posts = posts

	case ActionUpdatePost:
		post := action.Payload.(dto.PostResponse)
		state.Detail = &post
		state.Posts = replacePost(state.Posts, post)

	case ActionDeletePost:
		id := action.Payload.(string)
		posts := make([]dto.PostResponse, 0, len(state.Posts))
		for _, p := range state.Posts {
			if p.ID != id {
				posts = append(posts, p)
			}
		}
		state.Posts = posts
		if state.Detail != nil && state.Detail.ID == id {
			state.Detail = nil
		}

	case ActionLikePost:
		payload := action.Payload.(LikePayload)
		state = withPost(state, payload.PostID, func(p dto.PostResponse) dto.PostResponse {
			p.Likes = append(append([]string{}, p.Likes...), payload.UserID)
			return p
		})

	case ActionUnlikePost:
		payload := action.Payload.(LikePayload)
		state = withPost(state, payload.PostID, func(p dto.PostResponse) dto.PostResponse {
			likes := make([]string, 0, len(p.Likes))
			for _, id := range p.Likes {
				if id != payload.UserID {
					likes = append(likes, id)
				}
			}
			p.Likes = likes
			return p
		})

	case ActionAddComment:
		payload := action.Payload.(CommentsPayload)
		if state.Detail != nil && state.Detail.ID == payload.PostID {
			detail := *state.Detail
			detail.Comments = payload.Comments
			state.Detail = &detail
		}

	case ActionDeleteComment:
		payload := action.Payload.(CommentRemovedPayload)
		if state.Detail != nil && state.Detail.ID == payload.PostID {
			detail := *state.Detail
			comments := make([]dto.CommentResponse, 0, len(detail.Comments))
			for _, comment := range detail.Comments {
				if comment.ID != payload.CommentID {
					comments = append(comments, comment)
				}
			}
			detail.Comments = comments
			state.Detail = &detail
		}
	}
	return state
}

func replacePost(posts []dto.PostResponse, post dto.PostResponse) []dto.PostResponse {
	out := append([]dto.PostResponse{}, posts...)
	for i := range out {
		if out[i].ID == post.ID {
			out[i] = post
		}
	}
	return out
}

func withPost(state State, postID string, transform func(dto.PostResponse) dto.PostResponse) State {
	if state.Detail != nil && state.Detail.ID == postID {
		detail := transform(*state.Detail)
		state.Detail = &detail
	}
	posts := append([]dto.PostResponse{}, state.Posts...)
	for i := range posts {
		if posts[i].ID == postID {
			posts[i] = transform(posts[i])
		}
	}
	state.Posts = posts
	return state
}

// Command pairs an action kind with the request producing its fulfilled
// payload.
type Command struct {
	Kind ActionKind
	Run  func(ctx context.Context) (any, error)
}

// Handle is the future returned by Dispatch.
type Handle struct {
	ID   uuid.UUID
	done chan struct{}

	result any
	err    error
}

func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the outcome lands or the context ends.
func (h *Handle) Wait(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cache serializes reducer application. Outcomes apply in arrival order,
// not dispatch order; overlapping edits to the same entity carry no
// ordering guarantee.
type Cache struct {
	mu    sync.Mutex
	state State
}

func NewCache() *Cache {
	return &Cache{state: State{Posts: []dto.PostResponse{}, MyPosts: []dto.PostResponse{}}}
}

func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Cache) Apply(action Action) {
	c.mu.Lock()
	c.state = Reduce(c.state, action)
	c.mu.Unlock()
}

// Dispatch applies the pending action, runs the command, then applies the
// definitive outcome. The returned handle resolves once the outcome has
// been reduced into the cache.
func (c *Cache) Dispatch(ctx context.Context, cmd Command) *Handle {
	handle := &Handle{ID: uuid.New(), done: make(chan struct{})}
	c.Apply(Action{Kind: cmd.Kind, Phase: PhasePending})

	go func() {
		defer close(handle.done)
		result, err := cmd.Run(ctx)
		if err != nil {
			c.Apply(Action{Kind: cmd.Kind, Phase: PhaseRejected, Err: err})
			handle.err = err
			return
		}
		c.Apply(Action{Kind: cmd.Kind, Phase: PhaseFulfilled, Payload: result})
		handle.result = result
	}()
	return handle
}
