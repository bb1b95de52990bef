package models

import "time"

// User represents an account within the VidTube platform. PasswordHash and
// RefreshToken never leave the server; responses use PublicUser.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	AvatarURL    string
	CoverURL     string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns the response-safe projection of the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser is the user shape returned to clients, with credential and
// token fields stripped.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullname"`
	AvatarURL string    `json:"avatar"`
	CoverURL  string    `json:"coverImage,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Video is an uploaded video owned by a single user.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner"`
	VideoURL     string    `json:"videoFile"`
	ThumbnailURL string    `json:"thumbnail"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Comment belongs to one video and one user.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tweet is a short text post owned by a single user.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"tweet"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Playlist groups an ordered list of videos under one owner.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TokenPair groups the bearer credentials issued to authenticated users.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// OwnerCard is the minimal public owner shape embedded in view models.
type OwnerCard struct {
	Username  string `json:"username"`
	FullName  string `json:"fullname,omitempty"`
	AvatarURL string `json:"avatar"`
}

// ChannelProfile is the denormalized channel view built per request.
// Subscriber counts and IsSubscribed are derived, never stored.
type ChannelProfile struct {
	ID                        string    `json:"id"`
	Username                  string    `json:"username"`
	FullName                  string    `json:"fullname"`
	Email                     string    `json:"email"`
	AvatarURL                 string    `json:"avatar"`
	CoverURL                  string    `json:"coverImage,omitempty"`
	SubscribersCount          int64     `json:"subscribersCount"`
	ChannelsSubscribedToCount int64     `json:"channelsSubscribedToCount"`
	IsSubscribed              bool      `json:"isSubscribed"`
	CreatedAt                 time.Time `json:"createdAt"`
}

// VideoOwner extends OwnerCard with the per-request subscription view.
type VideoOwner struct {
	Username         string `json:"username"`
	AvatarURL        string `json:"avatar"`
	SubscribersCount int64  `json:"subscribersCount"`
	IsSubscribed     bool   `json:"isSubscribed"`
}

// VideoDetail is the single-video view with like count and owner card.
type VideoDetail struct {
	ID           string     `json:"id"`
	VideoURL     string     `json:"videoFile"`
	ThumbnailURL string     `json:"thumbnail"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Duration     float64    `json:"duration"`
	Views        int64      `json:"views"`
	LikesCount   int64      `json:"likesCount"`
	Owner        VideoOwner `json:"owner"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// WatchEntry is one row of a user's watch history.
type WatchEntry struct {
	Video     Video     `json:"video"`
	Owner     OwnerCard `json:"owner"`
	WatchedAt time.Time `json:"watchedAt"`
}

// TweetView is a tweet joined with its owner and like count.
type TweetView struct {
	ID         string    `json:"id"`
	Content    string    `json:"tweet"`
	LikesCount int64     `json:"likesCount"`
	Owner      OwnerCard `json:"owner"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LikedVideo is a video the caller liked, with its owner joined in.
type LikedVideo struct {
	Video   Video     `json:"video"`
	Owner   OwnerCard `json:"owner"`
	LikedAt time.Time `json:"likedAt"`
}

// PlaylistSummary is a playlist with aggregate video and view totals.
type PlaylistSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TotalVideos int64     `json:"totalVideos"`
	TotalViews  int64     `json:"totalViews"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CommentView is a comment joined with its owner's public card.
type CommentView struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Owner     OwnerCard `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
}
