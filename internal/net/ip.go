package net

import (
	"log"
	"net"
	"strconv"
)

// GetOutgoingIP finds the preferred local IP address to share with devices.
func GetOutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route to the internet: fall back to the interface list.
		if ip, ok := firstIPv4(); ok {
			return ip.String()
		}
		log.Println("[LINK] No suitable local IP found, using loopback")
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// LinkURL is the WebSocket address devices connect to for a listener on port.
func LinkURL(host string, port int) string {
	return "ws://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/link"
}
