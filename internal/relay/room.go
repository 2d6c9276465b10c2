package relay

// Capacity is the maximum number of members a room admits.
const Capacity = 2

// Room is a matching unit holding up to two clients. The first member is
// the one that created it.
type Room struct {
	ID      string
	Members []*Client
}

func newRoom(id string) *Room {
	return &Room{ID: id, Members: make([]*Client, 0, Capacity)}
}

// Size returns the number of admitted members.
func (r *Room) Size() int {
	return len(r.Members)
}

// Full reports whether the room is at capacity.
func (r *Room) Full() bool {
	return len(r.Members) >= Capacity
}

// Has reports whether c is a member of the room.
func (r *Room) Has(c *Client) bool {
	for _, m := range r.Members {
		if m == c {
			return true
		}
	}
	return false
}

func (r *Room) add(c *Client) {
	r.Members = append(r.Members, c)
}

func (r *Room) remove(c *Client) bool {
	for i, m := range r.Members {
		if m == c {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return true
		}
	}
	return false
}

// Others returns every member except c.
func (r *Room) Others(c *Client) []*Client {
	others := make([]*Client, 0, len(r.Members))
	for _, m := range r.Members {
		if m != c {
			others = append(others, m)
		}
	}
	return others
}
