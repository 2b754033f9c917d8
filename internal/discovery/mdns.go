// ABOUTME: mDNS advertisement and browsing for control servers on the LAN
// ABOUTME: Advertises the control bridge; remotes browse to find sessions
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_glasswing._tcp"

// Config holds advertisement parameters
type Config struct {
	Name string
	Port int
}

// ServerInfo describes a discovered control server
type ServerInfo struct {
	Name string
	Host string
	Port int
}

// Advertiser announces a control server on the local network
type Advertiser struct {
	config Config
	ctx    context.Context
	cancel context.CancelFunc
}

// NewAdvertiser creates an advertiser for the given service
func NewAdvertiser(config Config) *Advertiser {
	ctx, cancel := context.WithCancel(context.Background())
	return &Advertiser{config: config, ctx: ctx, cancel: cancel}
}

// Advertise publishes the service record until Shutdown
func (a *Advertiser) Advertise() error {
	ips, err := localIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		a.config.Name,
		serviceType,
		"",
		"",
		a.config.Port,
		ips,
		[]string{"path=/control"},
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", a.config.Name, a.config.Port, serviceType)

	go func() {
		<-a.ctx.Done()
		server.Shutdown()
	}()
	return nil
}

// Shutdown withdraws the advertisement
func (a *Advertiser) Shutdown() {
	a.cancel()
}

// Browser searches the LAN for control servers
type Browser struct {
	ctx     context.Context
	cancel  context.CancelFunc
	servers chan *ServerInfo
}

// NewBrowser creates a browser
func NewBrowser() *Browser {
	ctx, cancel := context.WithCancel(context.Background())
	return &Browser{
		ctx:     ctx,
		cancel:  cancel,
		servers: make(chan *ServerInfo, 10),
	}
}

// Browse starts querying; discovered servers arrive on Servers
func (b *Browser) Browse() {
	go b.browseLoop()
}

func (b *Browser) browseLoop() {
	for {
		select {
		case <-b.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)
		go func() {
			for entry := range entries {
				if entry.AddrV4 == nil {
					continue
				}
				info := &ServerInfo{
					Name: entry.Name,
					Host: entry.AddrV4.String(),
					Port: entry.Port,
				}
				log.Printf("Discovered server: %s at %s:%d", info.Name, info.Host, info.Port)
				select {
				case b.servers <- info:
				case <-b.ctx.Done():
					return
				}
			}
		}()

		params := &mdns.QueryParam{
			Service: serviceType,
			Domain:  "local",
			Timeout: 3 * time.Second,
			Entries: entries,
		}
		mdns.Query(params)
		close(entries)
	}
}

// Servers returns the channel of discovered servers
func (b *Browser) Servers() <-chan *ServerInfo {
	return b.servers
}

// Stop ends browsing
func (b *Browser) Stop() {
	b.cancel()
}

// localIPs returns the non-loopback IPv4 addresses of up interfaces
func localIPs() ([]net.IP, error) {
	var ips []net.IP

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
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}
	return ips, nil
}
