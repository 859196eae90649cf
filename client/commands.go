package client

import (
	"context"
	"errors"

	"inkbytr/internal/dto"
)

// Command constructors mirror the async thunks one-for-one: each wraps a
// request and shapes the fulfilled payload the reducer expects.

func FetchPostsCommand(api *API) Command {
	return Command{Kind: ActionFetchPosts, Run: func(ctx context.Context) (any, error) {
		return api.ListPosts(ctx)
	}}
}

func FetchMyPostsCommand(api *API) Command {
	return Command{Kind: ActionFetchMyPosts, Run: func(ctx context.Context) (any, error) {
		return api.MyPosts(ctx)
	}}
}

func FetchPostCommand(api *API, id string) Command {
	return Command{Kind: ActionFetchPost, Run: func(ctx context.Context) (any, error) {
		post, err := api.GetPost(ctx, id)
		if err != nil {
			return nil, err
		}
		return *post, nil
	}}
}

func CreatePostCommand(api *API, title, content string) Command {
	return Command{Kind: ActionCreatePost, Run: func(ctx context.Context) (any, error) {
		post, err := api.CreatePost(ctx, title, content)
		if err != nil {
			return nil, err
		}
		return *post, nil
	}}
}

func UpdatePostCommand(api *API, id string, patch dto.UpdatePostRequest) Command {
	return Command{Kind: ActionUpdatePost, Run: func(ctx context.Context) (any, error) {
		post, err := api.UpdatePost(ctx, id, patch)
		if err != nil {
			return nil, err
		}
		return *post, nil
	}}
}

func DeletePostCommand(api *API, id string) Command {
	return Command{Kind: ActionDeletePost, Run: func(ctx context.Context) (any, error) {
		if err := api.DeletePost(ctx, id); err != nil {
			return nil, err
		}
		return id, nil
	}}
}

// LikePostCommand resolves the liker from the session so the reducer can
// update the set without refetching. The server stays authoritative: a
// duplicate like rejects and the cache is untouched.
func LikePostCommand(api *API, id string) Command {
	return Command{Kind: ActionLikePost, Run: func(ctx context.Context) (any, error) {
		identity, ok := api.Session.Identity()
		if !ok {
			return nil, errors.New("not authenticated")
		}
		if err := api.LikePost(ctx, id); err != nil {
			return nil, err
		}
		return LikePayload{PostID: id, UserID: identity.ID}, nil
	}}
}

func UnlikePostCommand(api *API, id string) Command {
	return Command{Kind: ActionUnlikePost, Run: func(ctx context.Context) (any, error) {
		identity, ok := api.Session.Identity()
		if !ok {
			return nil, errors.New("not authenticated")
		}
		if err := api.UnlikePost(ctx, id); err != nil {
			return nil, err
		}
		return LikePayload{PostID: id, UserID: identity.ID}, nil
	}}
}

func AddCommentCommand(api *API, postID, text string) Command {
	return Command{Kind: ActionAddComment, Run: func(ctx context.Context) (any, error) {
		comments, err := api.AddComment(ctx, postID, text)
		if err != nil {
			return nil, err
		}
		return CommentsPayload{PostID: postID, Comments: comments}, nil
	}}
}

func DeleteCommentCommand(api *API, postID, commentID string) Command {
	return Command{Kind: ActionDeleteComment, Run: func(ctx context.Context) (any, error) {
		if err := api.DeleteComment(ctx, postID, commentID); err != nil {
			return nil, err
		}
		return CommentRemovedPayload{PostID: postID, CommentID: commentID}, nil
	}}
}
