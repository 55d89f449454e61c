// ABOUTME: mDNS discovery of packet receivers for the bridge CLI
// ABOUTME: Browses for _pcmbridge._tcp receivers and advertises a local one
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Resonate-Protocol/pcmbridge/pkg/sink"
	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service receivers advertise
const ServiceType = "_pcmbridge._tcp"

// DefaultQueryTimeout bounds a single browse round
const DefaultQueryTimeout = 3 * time.Second

// ErrNoReceiver is returned when no receiver answered before the deadline
var ErrNoReceiver = errors.New("no receiver found")

// Config holds discovery configuration
type Config struct {
	ServiceName  string
	Port         int
	Path         string        // WebSocket path advertised in the TXT record
	QueryTimeout time.Duration // per browse round
}

// Manager handles mDNS operations
type Manager struct {
	config    Config
	ctx       context.Context
	cancel    context.CancelFunc
	receivers chan *ReceiverInfo
}

// ReceiverInfo describes a discovered receiver
type ReceiverInfo struct {
	Name string
	Host string
	Port int
	Path string
}

// Addr returns host:port for dialing
func (r *ReceiverInfo) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	if config.Path == "" {
		config.Path = sink.DefaultWebSocketPath
	}
	if config.QueryTimeout <= 0 {
		config.QueryTimeout = DefaultQueryTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		config:    config,
		ctx:       ctx,
		cancel:    cancel,
		receivers: make(chan *ReceiverInfo, 10),
	}
}

// Advertise announces a receiver on this host until Stop is called
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		[]string{"path=" + m.config.Path},
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS receiver: %s on port %d", m.config.ServiceName, m.config.Port)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse starts searching for receivers; results arrive on Receivers()
func (m *Manager) Browse() {
	go m.browseLoop()
}

func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)
		done := make(chan struct{})

		go func() {
			defer close(done)
			for entry := range entries {
				r := receiverFromEntry(entry)
				if r == nil {
					continue
				}

				log.Printf("Discovered receiver: %s at %s%s", r.Name, r.Addr(), r.Path)

				select {
				case m.receivers <- r:
				case <-m.ctx.Done():
				}
			}
		}()

		params := &mdns.QueryParam{
			Service:     ServiceType,
			Domain:      "local",
			Timeout:     m.config.QueryTimeout,
			Entries:     entries,
			DisableIPv6: true,
		}

		err := mdns.Query(params)
		close(entries)
		<-done

		if err != nil {
			log.Printf("mDNS query failed: %v", err)
			select {
			case <-time.After(m.config.QueryTimeout):
			case <-m.ctx.Done():
				return
			}
		}
	}
}

// Receivers returns the channel of discovered receivers
func (m *Manager) Receivers() <-chan *ReceiverInfo {
	return m.receivers
}

// Stop stops browsing and withdraws any advertisement
func (m *Manager) Stop() {
	m.cancel()
}

// FindReceiver browses until the first receiver answers or ctx ends
func FindReceiver(ctx context.Context) (*ReceiverInfo, error) {
	m := NewManager(Config{})
	defer m.Stop()

	m.Browse()

	select {
	case r := <-m.Receivers():
		return r, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrNoReceiver, ctx.Err())
	}
}

// receiverFromEntry converts an mDNS answer, returning nil when it has no usable address
func receiverFromEntry(entry *mdns.ServiceEntry) *ReceiverInfo {
	if entry == nil || entry.Port <= 0 {
		return nil
	}

	r := &ReceiverInfo{
		Name: strings.TrimSuffix(entry.Name, "."+ServiceType+".local."),
		Port: entry.Port,
		Path: sink.DefaultWebSocketPath,
	}

	switch {
	case entry.AddrV4 != nil:
		r.Host = entry.AddrV4.String()
	case entry.AddrV6 != nil:
		r.Host = entry.AddrV6.String()
	case entry.Host != "":
		r.Host = strings.TrimSuffix(entry.Host, ".")
	default:
		return nil
	}

	for _, field := range entry.InfoFields {
		if path, ok := strings.CutPrefix(field, "path="); ok && path != "" {
			r.Path = path
		}
	}

	return r
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	ips := []net.IP{}

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				ips = append(ips, ipnet.IP)
			}
		}
	}

	return ips, nil
}
