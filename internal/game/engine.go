package game

import (
	"math"
	"math/rand"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/lukinoo0/Blazefield/internal/config"
	"github.com/lukinoo0/Blazefield/internal/profile"
	"github.com/lukinoo0/Blazefield/internal/protocol"
	"github.com/lukinoo0/Blazefield/internal/types"
	"github.com/lukinoo0/Blazefield/internal/utils"
)

const dropInvalidState = "invalid_state"

// Conn is the outbound side of a human session. Send must not block; a
// full or closed session drops the message and returns false.
type Conn interface {
	Send(msg protocol.Message) bool
}

// ProfileQueue accepts profile work without blocking
type ProfileQueue interface {
	Submit(job profile.Job) bool
}

// TokenSigner issues and checks profile tokens
type TokenSigner interface {
	Sign(profileID string) (string, error)
	Verify(token string) (string, error)
}

// Options configures a new Engine
type Options struct {
	Config   config.GameConfig
	World    World
	Rand     *rand.Rand
	Profiles ProfileQueue
	Tokens   TokenSigner
	Logger   zerolog.Logger
	// Meter defaults to the global meter provider
	Meter metric.Meter
}

// Engine owns the authoritative world. Every mutation of the store happens
// under mu, so shot resolution always sees a consistent set of entities.
type Engine struct {
	mu       sync.Mutex
	cfg      config.GameConfig
	store    *Store
	geometry *GeometryIndex
	resolver *Resolver
	spawner  *Spawner
	bots     *BotController
	conns    map[types.EntityID]Conn

	profiles ProfileQueue
	tokens   TokenSigner
	metrics  *engineMetrics
	logger   zerolog.Logger
}

// NewEngine builds the world and spawns the configured number of bots
func NewEngine(opts Options) *Engine {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	store := NewStore()
	geometry := NewGeometryIndex(opts.World.Obstacles)
	spawner := NewSpawner(opts.World.SpawnPoints, rng)

	e := &Engine{
		cfg:      opts.Config,
		store:    store,
		geometry: geometry,
		resolver: NewResolver(opts.Config),
		spawner:  spawner,
		bots:     NewBotController(store, geometry, spawner, rng, opts.Config),
		conns:    make(map[types.EntityID]Conn),
		profiles: opts.Profiles,
		tokens:   opts.Tokens,
		metrics:  newEngineMetrics(opts.Meter),
		logger:   opts.Logger,
	}

	for _, bot := range e.bots.Spawn(opts.Config.BotCount) {
		e.logger.Debug().Uint64("id", uint64(bot.ID)).Str("name", bot.Name).Msg("Bot spawned")
	}
	return e
}

// Connect creates a human entity for a new session and greets it
func (e *Engine) Connect(conn Conn) types.EntityID {
	e.mu.Lock()
	defer e.mu.Unlock()

	player := e.store.AddHuman(e.spawner.Pick(e.store, 0))
	e.conns[player.ID] = conn
	conn.Send(protocol.NewHello(player.ID, player.Position, player.Health))
	e.metrics.sessionOpened()

	e.logger.Info().Uint64("id", uint64(player.ID)).Int("players", len(e.conns)).Msg("Player connected")
	return player.ID
}

// Disconnect removes a human entity. Calling it twice is harmless.
func (e *Engine) Disconnect(id types.EntityID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.conns[id]; !exists {
		return
	}
	delete(e.conns, id)
	e.store.Remove(id)
	e.metrics.sessionClosed()

	e.logger.Info().Uint64("id", uint64(id)).Int("players", len(e.conns)).Msg("Player disconnected")
}

// Handle applies one decoded inbound message from a human session
func (e *Engine) Handle(id types.EntityID, msg protocol.Message) {
	var jobs []profile.Job

	e.mu.Lock()
	if _, exists := e.conns[id]; exists {
		switch m := msg.(type) {
		case protocol.Join:
			jobs = e.handleJoin(id, m)
		case protocol.State:
			if !e.store.ApplyState(id, m.Position, m.RotY) {
				e.metrics.dropped(dropInvalidState)
			}
		case protocol.Shot:
			jobs = e.fire(types.ShotRequest{
				ShooterID: id,
				Origin:    m.Origin,
				Direction: m.Direction,
				Damage:    e.shotDamage(m.Damage),
			})
		case protocol.ResetProfile:
			jobs = e.handleReset(id)
		}
	}
	e.mu.Unlock()

	e.submit(jobs)
}

// Dropped records an inbound message the gateway could not decode
func (e *Engine) Dropped(reason string) {
	e.metrics.dropped(reason)
}

// Fire resolves a shot request that was already captured. The shooter may
// have left since; the shot still resolves against the current entities.
func (e *Engine) Fire(shot types.ShotRequest) {
	e.mu.Lock()
	jobs := e.fire(shot)
	e.mu.Unlock()

	e.submit(jobs)
}

// BroadcastState sends one snapshot of every entity to every human. The
// snapshot is encoded once per wire format, not once per session.
func (e *Engine) BroadcastState() {
	start := time.Now()

	e.mu.Lock()
	snapshot := protocol.Prepare(protocol.ToSnapshot(e.store.All()))
	for _, conn := range e.conns {
		conn.Send(snapshot)
	}
	e.mu.Unlock()

	e.metrics.broadcastTook(time.Since(start))
}

// ThinkBots advances every bot by dt, firing through the same pipeline as humans
func (e *Engine) ThinkBots(dt time.Duration) {
	var jobs []profile.Job

	e.mu.Lock()
	e.bots.Think(dt, func(shot types.ShotRequest) {
		jobs = append(jobs, e.fire(shot)...)
	})
	e.mu.Unlock()

	e.submit(jobs)
}

// Entity returns a copy of an entity's current state
func (e *Engine) Entity(id types.EntityID) (types.Entity, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entity, exists := e.store.Get(id)
	if !exists {
		return types.Entity{}, false
	}
	return *entity, true
}

// Snapshot returns the current snapshot entries
func (e *Engine) Snapshot() []protocol.PlayerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return protocol.ToSnapshot(e.store.All()).Players
}

// fire resolves a shot and applies its damage. Caller holds mu.
func (e *Engine) fire(shot types.ShotRequest) []profile.Job {
	shooter, shooterExists := e.store.Get(shot.ShooterID)
	e.metrics.shotFired(shooterExists && shooter.IsBot())

	hit, ok := e.resolver.Resolve(e.store, shot)
	if !ok {
		return nil
	}
	e.metrics.hitLanded(hit.Headshot)

	var attacker *types.Entity
	if shooterExists {
		attacker = shooter
	}
	target := hit.Target
	outcome := ApplyDamage(e.store, e.spawner, target, attacker, DamagePoints(hit.Damage))

	if conn, ok := e.conns[target.ID]; ok {
		var spawn *types.Vector3
		if outcome.Killed {
			s := outcome.Spawn
			spawn = &s
		}
		conn.Send(protocol.NewHitInfo(outcome.Health, outcome.Killed, killerName(attacker), spawn))
	}

	if outcome.Killed {
		e.metrics.killed()
		kill := protocol.Prepare(protocol.NewKillEvent(shot.ShooterID, target.ID))
		for _, conn := range e.conns {
			conn.Send(kill)
		}
		e.logger.Debug().
			Uint64("killer", uint64(shot.ShooterID)).
			Uint64("victim", uint64(target.ID)).
			Bool("headshot", hit.Headshot).
			Msg("Kill")
	}

	if attacker != nil {
		if conn, ok := e.conns[attacker.ID]; ok {
			conn.Send(protocol.NewHitConfirm(target.ID))
		}
	}

	if !outcome.Killed {
		return nil
	}

	var jobs []profile.Job
	if !target.IsBot() && target.ProfileID != "" {
		jobs = append(jobs, e.creditJob(target.ID, target.ProfileID, 0, 1))
	}
	if outcome.Credited && !attacker.IsBot() && attacker.ProfileID != "" {
		jobs = append(jobs, e.creditJob(attacker.ID, attacker.ProfileID, 1, 0))
	}
	return jobs
}

func (e *Engine) handleJoin(id types.EntityID, msg protocol.Join) []profile.Job {
	player, exists := e.store.Get(id)
	if !exists {
		return nil
	}

	player.Name = truncate(msg.Nickname, config.MaxNicknameLength)
	player.Class = msg.Class
	if player.Class == "" {
		player.Class = config.DefaultClass
	}
	player.Gamemode = msg.Gamemode
	if player.Gamemode == "" {
		player.Gamemode = config.DefaultGamemode
	}

	profileID := msg.ProfileID
	if msg.ProfileToken != "" && e.tokens != nil {
		if subject, err := e.tokens.Verify(msg.ProfileToken); err == nil {
			profileID = subject
		} else {
			e.logger.Debug().Err(err).Uint64("id", uint64(id)).Msg("Ignoring invalid profile token")
		}
	}

	e.logger.Info().Uint64("id", uint64(id)).Str("nickname", player.Name).Str("class", player.Class).Msg("Player joined")

	return []profile.Job{{
		Op:        profile.OpResolve,
		ProfileID: profileID,
		Nickname:  player.Name,
		Class:     msg.Class,
		Done:      func(p *profile.Profile) { e.attachProfile(id, p) },
	}}
}

func (e *Engine) handleReset(id types.EntityID) []profile.Job {
	player, exists := e.store.Get(id)
	if !exists || player.ProfileID == "" {
		return nil
	}
	return []profile.Job{{
		Op:        profile.OpReset,
		ProfileID: player.ProfileID,
		Done:      func(p *profile.Profile) { e.sendProfile(id, p) },
	}}
}

func (e *Engine) creditJob(id types.EntityID, profileID string, kills, deaths int) profile.Job {
	return profile.Job{
		Op:        profile.OpCredit,
		ProfileID: profileID,
		Kills:     kills,
		Deaths:    deaths,
		Done:      func(p *profile.Profile) { e.sendProfile(id, p) },
	}
}

// attachProfile finalizes a joined player's identity from their profile.
// Players that left in the meantime are ignored; ids are never reused.
func (e *Engine) attachProfile(id types.EntityID, p *profile.Profile) {
	if p == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	player, exists := e.store.Get(id)
	if !exists {
		return
	}
	player.ProfileID = p.ID
	if p.Nickname != "" {
		player.Name = truncate(p.Nickname, config.MaxNicknameLength)
	}
	if p.Class != "" {
		player.Class = p.Class
	}
	e.sendProfileLocked(id, p)
}

func (e *Engine) sendProfile(id types.EntityID, p *profile.Profile) {
	if p == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.sendProfileLocked(id, p)
}

func (e *Engine) sendProfileLocked(id types.EntityID, p *profile.Profile) {
	conn, exists := e.conns[id]
	if !exists {
		return
	}

	var token string
	if e.tokens != nil {
		signed, err := e.tokens.Sign(p.ID)
		if err != nil {
			e.logger.Warn().Err(err).Str("profile", p.ID).Msg("Failed to sign profile token")
		}
		token = signed
	}
	conn.Send(protocol.NewProfileMessage(p, token))
}

func (e *Engine) submit(jobs []profile.Job) {
	if e.profiles == nil {
		return
	}
	for _, job := range jobs {
		if e.profiles.Submit(job) {
			continue
		}
		// A join still gets an identity when the queue is saturated
		if job.Op == profile.OpResolve && job.Done != nil {
			job.Done(profile.New(job.ProfileID, job.Nickname, job.Class))
		}
	}
}

// shotDamage applies the default to missing or non-positive damage and caps it
func (e *Engine) shotDamage(declared *float64) float64 {
	if declared == nil || !utils.IsFinite(*declared) || *declared <= 0 {
		return e.cfg.DefaultShotDamage
	}
	return math.Min(*declared, config.MaxShotDamage)
}

func killerName(attacker *types.Entity) string {
	if attacker == nil || attacker.Name == "" {
		return "Unknown"
	}
	return attacker.Name
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
