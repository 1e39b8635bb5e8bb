package supervisor

import (
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/talismancer/journald-exporter/internal/corelog"
)

// NotifyReady tells systemd the supervisor is ready to serve scrapes.
// Manager.Run calls it after every successful Spawn, once the version
// bytes have been written to the worker. A no-op outside
// a systemd unit (daemon.SdNotify reports not-supported, which is not
// an error here).
func NotifyReady() {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		corelog.Warningf("sd_notify READY failed: %v", err)
	}
}

// NotifyStopping tells systemd the supervisor is shutting down.
func NotifyStopping() {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		corelog.Warningf("sd_notify STOPPING failed: %v", err)
	}
}
