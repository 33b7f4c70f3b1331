package intake

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/toast"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the bus name to claim.
	DBusBusName = "org.freedesktop.Notifications"

	// dbusIDPrefix tags toasts created over D-Bus so that replaces_id and
	// CloseNotification find them again.
	dbusIDPrefix = "dbus-"

	urgencyCritical = 2

	// closeReasonClosed is the NotificationClosed reason for a
	// CloseNotification call.
	closeReasonClosed uint32 = 3
)

// ServerCapabilities lists the capabilities advertised over D-Bus.
var ServerCapabilities = []string{
	"body",
	"icon-static",
}

// Notification holds the arguments of one Notify call.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Urgency returns the urgency hint, 1 (normal) when absent.
func (n *Notification) Urgency() int {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return int(b)
		}
	}
	return 1
}

// Category returns the category hint.
func (n *Notification) Category() string {
	if v, ok := n.Hints["category"]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

// ImagePath returns the image-path hint, falling back to the legacy
// image_path spelling.
func (n *Notification) ImagePath() string {
	for _, key := range []string{"image-path", "image_path"} {
		if v, ok := n.Hints[key]; ok {
			if s, ok := v.Value().(string); ok {
				return s
			}
		}
	}
	return ""
}

// Request converts the notification into a show request for the toast
// tagged with the D-Bus id, so a later Notify replacing id supersedes it.
func (n *Notification) Request(id uint32) Request {
	req := Request{
		Op:       OpShow,
		ID:       dbusToastID(id),
		Heading:  n.Summary,
		Message:  n.Body,
		Icon:     n.iconKind().String(),
		IconPath: n.iconPath(),
	}
	if req.Heading == "" {
		req.Heading = n.AppName
	}

	// Negative timeouts leave the configured default in place.
	if n.ExpireTimeout >= 0 {
		d := config.Duration(time.Duration(n.ExpireTimeout) * time.Millisecond)
		req.Duration = &d
	}
	return req
}

func (n *Notification) iconKind() toast.IconKind {
	if n.Urgency() >= urgencyCritical {
		return toast.IconError
	}

	name := strings.ToLower(n.AppIcon)
	category := n.Category()
	switch {
	case strings.Contains(name, "error"), strings.HasSuffix(category, ".error"):
		return toast.IconError
	case strings.Contains(name, "success"), strings.HasSuffix(category, ".complete"):
		return toast.IconSuccess
	default:
		return toast.IconNone
	}
}

// iconPath returns an image file named by the notification, if any. Themed
// icon names are not paths and map to an icon kind instead.
func (n *Notification) iconPath() string {
	for _, s := range []string{n.ImagePath(), n.AppIcon} {
		if strings.HasPrefix(s, "file://") {
			if u, err := url.Parse(s); err == nil {
				return u.Path
			}
		}
		if strings.HasPrefix(s, "/") {
			return s
		}
	}
	return ""
}

func dbusToastID(id uint32) string {
	return dbusIDPrefix + strconv.FormatUint(uint64(id), 10)
}

// NotificationServer implements the org.freedesktop.Notifications D-Bus
// interface on top of a Dispatcher.
type NotificationServer struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
	conn       *dbus.Conn

	nextID atomic.Uint32

	mu        sync.Mutex
	ctx       context.Context
	activeIDs map[uint32]bool
}

// NewNotificationServer creates a server that applies notifications through
// dispatcher.
func NewNotificationServer(dispatcher *Dispatcher, logger *slog.Logger) *NotificationServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationServer{
		dispatcher: dispatcher,
		logger:     logger,
		ctx:        context.Background(),
		activeIDs:  make(map[uint32]bool),
	}
}

// Run claims the notification bus name on the session bus and serves calls
// until ctx is cancelled.
func (s *NotificationServer) Run(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	s.mu.Lock()
	s.conn = conn
	s.ctx = ctx
	s.mu.Unlock()

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: notificationMethods(),
				Signals: notificationSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	s.logger.Info("D-Bus notification server started", "interface", DBusInterface, "path", DBusPath)
	<-ctx.Done()

	if _, err := conn.ReleaseName(DBusBusName); err != nil {
		s.logger.Warn("failed to release bus name", "error", err)
	}
	s.logger.Info("D-Bus notification server stopped")
	return nil
}

// GetCapabilities returns the capabilities supported by this server.
// D-Bus method: GetCapabilities() -> as
func (s *NotificationServer) GetCapabilities() ([]string, *dbus.Error) {
	return ServerCapabilities, nil
}

// GetServerInformation describes this server.
// D-Bus method: GetServerInformation() -> (ssss)
func (s *NotificationServer) GetServerInformation() (string, string, string, string, *dbus.Error) {
	return "toastkit", "toastkit", "0.1.0", "1.2", nil
}

// Notify shows a notification as a toast.
// D-Bus method: Notify(susssasa{sv}i) -> u
func (s *NotificationServer) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	id := replacesID
	if id == 0 {
		id = s.nextID.Add(1)
	}

	n := &Notification{
		AppName:       appName,
		ReplacesID:    replacesID,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}
	s.logger.Debug("Notify called",
		"app_name", appName,
		"replaces_id", replacesID,
		"summary", summary,
		"id", id,
	)

	req := n.Request(id)
	if err := req.Validate(); err != nil {
		return 0, dbus.MakeFailedError(err)
	}
	if err := s.dispatcher.Dispatch(s.context(), req); err != nil {
		return 0, dbus.MakeFailedError(err)
	}

	s.mu.Lock()
	s.activeIDs[id] = true
	s.mu.Unlock()
	return id, nil
}

// CloseNotification dismisses the toast shown for id.
// D-Bus method: CloseNotification(u) -> nothing
func (s *NotificationServer) CloseNotification(id uint32) *dbus.Error {
	s.logger.Debug("CloseNotification called", "id", id)

	s.mu.Lock()
	exists := s.activeIDs[id]
	delete(s.activeIDs, id)
	s.mu.Unlock()

	if !exists {
		return nil
	}

	if err := s.dispatcher.Dispatch(s.context(), Request{Op: OpDismiss, ID: dbusToastID(id)}); err != nil {
		return dbus.MakeFailedError(err)
	}

	if err := s.emitNotificationClosed(id, closeReasonClosed); err != nil {
		s.logger.Warn("failed to emit NotificationClosed signal", "id", id, "error", err)
	}
	return nil
}

func (s *NotificationServer) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *NotificationServer) emitNotificationClosed(id, reason uint32) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Emit(DBusPath, DBusInterface+".NotificationClosed", id, reason)
}

func notificationMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCapabilities",
			Args: []introspect.Arg{
				{Name: "capabilities", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "spec_version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Notify",
			Args: []introspect.Arg{
				{Name: "app_name", Type: "s", Direction: "in"},
				{Name: "replaces_id", Type: "u", Direction: "in"},
				{Name: "app_icon", Type: "s", Direction: "in"},
				{Name: "summary", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "actions", Type: "as", Direction: "in"},
				{Name: "hints", Type: "a{sv}", Direction: "in"},
				{Name: "expire_timeout", Type: "i", Direction: "in"},
				{Name: "id", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "CloseNotification",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
			},
		},
	}
}

func notificationSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NotificationClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "reason", Type: "u"},
			},
		},
	}
}
