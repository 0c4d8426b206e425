package model

// FriendStatus is the relationship between an ordered pair of users, derived
// from the target user's document. The three states are mutually exclusive.
type FriendStatus string

const (
	FriendStatusNone        = FriendStatus("NONE")
	FriendStatusRequestSent = FriendStatus("REQUEST_SENT")
	FriendStatusFriends     = FriendStatus("FRIENDS")
)

// User is a stored user document. Field names are the persisted contract the
// client reads directly.
type User struct {
	UID               string   `json:"uid"`
	Name              string   `json:"name"`
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	PhotoURL          string   `json:"photoUrl"`
	Friends           []string `json:"friends"`
	FriendRequests    []string `json:"friendRequests"`
	RecommendedMovies []string `json:"recommendedMovies"`
	Favorites         []string `json:"favorites"`
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	c := *u
	c.Friends = append([]string(nil), u.Friends...)
	c.FriendRequests = append([]string(nil), u.FriendRequests...)
	c.RecommendedMovies = append([]string(nil), u.RecommendedMovies...)
	c.Favorites = append([]string(nil), u.Favorites...)
	return &c
}

// IsFriend reports whether uid is in the user's friends set.
func (u *User) IsFriend(uid string) bool {
	return contains(u.Friends, uid)
}

// HasRequestFrom reports whether uid has a pending friend request to this user.
func (u *User) HasRequestFrom(uid string) bool {
	return contains(u.FriendRequests, uid)
}

// IsFavorite reports whether the item is in the user's favorites set.
func (u *User) IsFavorite(itemID string) bool {
	return contains(u.Favorites, itemID)
}

// AddFriend adds uid to the friends set if absent.
func (u *User) AddFriend(uid string) {
	u.Friends = appendIfAbsent(u.Friends, uid)
}

// RemoveFriend removes uid from the friends set.
func (u *User) RemoveFriend(uid string) {
	u.Friends = remove(u.Friends, uid)
}

// AddRequest adds uid to the pending friend-request set if absent.
func (u *User) AddRequest(uid string) {
	u.FriendRequests = appendIfAbsent(u.FriendRequests, uid)
}

// RemoveRequest removes uid from the pending friend-request set.
func (u *User) RemoveRequest(uid string) {
	u.FriendRequests = remove(u.FriendRequests, uid)
}

// AddFavorite adds itemID to the favorites set if absent.
func (u *User) AddFavorite(itemID string) {
	u.Favorites = appendIfAbsent(u.Favorites, itemID)
}

// RemoveFavorite removes itemID from the favorites set.
func (u *User) RemoveFavorite(itemID string) {
	u.Favorites = remove(u.Favorites, itemID)
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func appendIfAbsent(s []string, v string) []string {
	if contains(s, v) {
		return s
	}
	return append(s, v)
}

func remove(s []string, v string) []string {
	out := s[:0]
	for _, e := range s {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}
