package ledger

import "fmt"

// Event keys identify one logical point-affecting occurrence. The key is the
// point event's identity, so each shape must stay stable once deployed.

func PostCreateKey(postId string) string {
	return fmt.Sprintf("post:create:%s", postId)
}

func PostDeleteKey(postId string) string {
	return fmt.Sprintf("post:delete:%s", postId)
}

// LikeKey keys a like toggle by direction: liked=true is the "like" event,
// false is "unlike".
func LikeKey(postId, likerId string, liked bool) string {
	direction := "unlike"
	if liked {
		direction = "like"
	}
	return fmt.Sprintf("like:%s:%s:%s", postId, likerId, direction)
}

func CommentCreateKey(postId, commentId string) string {
	return fmt.Sprintf("comment:create:%s:%s", postId, commentId)
}

func CommentDeleteKey(postId, commentId string) string {
	return fmt.Sprintf("comment:delete:%s:%s", postId, commentId)
}

func AdminAdjustKey(targetUserId, requestId string) string {
	return fmt.Sprintf("admin:adjust:%s:%s", targetUserId, requestId)
}
