package model

// ChangeEntity identifies which entity set a change notification concerns
type ChangeEntity string

const (
	ChangeRoom      ChangeEntity = "room"
	ChangePlayers   ChangeEntity = "players"
	ChangeGameState ChangeEntity = "game_state"
)

// Change is a storage change notification scoped to a room. Delivery is
// at-least-once and unordered: consumers must refetch and treat the result
// as an idempotent snapshot rather than a delta.
type Change struct {
	RoomID RoomID
	Entity ChangeEntity
}
