package main

import (
	"context"

	switchclient "switchboard/internal/client"
	"switchboard/internal/types"
)

type clientFactory func() (commandClient, error)

// commandClient is the slice of the daemon client the commands use.
// Tests substitute a fake.
type commandClient interface {
	EnsureDaemon(ctx context.Context) error
	EnsureDaemonVersion(ctx context.Context, expectedVersion string, restart bool) error
	Health(ctx context.Context) (*switchclient.HealthResponse, error)
	ShutdownDaemon(ctx context.Context) error

	ListTerminals(ctx context.Context) ([]*types.Terminal, error)
	OpenTerminal(ctx context.Context, req switchclient.OpenTerminalRequest) (*types.Terminal, error)
	CloseTerminal(ctx context.Context, id string) error
	SendInput(ctx context.Context, id, data string) error
	TerminalOutput(ctx context.Context, id string, lines int) (*switchclient.TerminalOutputResponse, error)
	FollowOutput(ctx context.Context, id string) (<-chan types.OutputChunk, func(), error)
	InvokeAgent(ctx context.Context, id string, req switchclient.InvokeAgentRequest) (*types.Terminal, error)
	ResumeAgent(ctx context.Context, id string, req switchclient.ResumeSessionRequest) (*types.Terminal, error)
	SwitchProfile(ctx context.Context, id, profileID string) (*switchclient.SwitchResult, error)

	ListProfiles(ctx context.Context) (*switchclient.ProfileListResponse, error)
	CreateProfile(ctx context.Context, req switchclient.CreateProfileRequest) (*switchclient.Profile, error)
	DeleteProfile(ctx context.Context, id string) error
	SetProfileToken(ctx context.Context, id string, req switchclient.SetProfileTokenRequest) error
	ActivateProfile(ctx context.Context, id string) error
	StartLogin(ctx context.Context, id string) (*types.Terminal, error)
	BestProfile(ctx context.Context, excludeID string) (*switchclient.Profile, error)

	AutoSwitchSettings(ctx context.Context) (*types.AutoSwitchSettings, error)
	SetAutoSwitch(ctx context.Context, settings types.AutoSwitchSettings) (*types.AutoSwitchSettings, error)
	EventStream(ctx context.Context) (<-chan types.UIEvent, func(), error)
}

func newSwitchboardClient() (commandClient, error) {
	client, err := switchclient.New()
	if err != nil {
		return nil, err
	}
	return client, nil
}
