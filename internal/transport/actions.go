package transport

import "github.com/palemoky/flip-seven/internal/protocol"

// Join takes a seat. The name is remembered so the seat can be reclaimed after a reconnect.
func (c *Client) Join(name string) error {
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()
	return c.Send(protocol.Join{Name: name})
}

func (c *Client) StartGame() error {
	return c.Send(protocol.StartGame{})
}

func (c *Client) Hit() error {
	return c.Send(protocol.Hit{})
}

func (c *Client) Stay() error {
	return c.Send(protocol.Stay{})
}

// UseFreeze plays a held Freeze on target; an empty target means yourself
func (c *Client) UseFreeze(target string) error {
	return c.Send(protocol.UseFreeze{Target: target})
}

// UseFlipThree plays a held Flip Three on target; an empty target means yourself
func (c *Client) UseFlipThree(target string) error {
	return c.Send(protocol.UseFlipThree{Target: target})
}

func (c *Client) NewRound() error {
	return c.Send(protocol.NewRound{})
}

func (c *Client) Restart() error {
	return c.Send(protocol.Restart{})
}
