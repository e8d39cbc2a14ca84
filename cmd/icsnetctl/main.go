// Command icsnetctl is a thin CLI over the icsnet client API: finding
// devices, opening one, subscribing to its traffic, transmitting a message,
// and reading/writing its logical disk. Modeled on the teacher's cmd/azurl:
// flag.FlagSet per subcommand, errors reported with log.Fatalf, no CLI
// framework dependency.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/icsneo/icsnet"
	"github.com/icsneo/icsnet/client"

	_ "github.com/icsneo/icsnet/transport/ethertunnel"
	_ "github.com/icsneo/icsnet/transport/loopback"
	_ "github.com/icsneo/icsnet/transport/shm"
	_ "github.com/icsneo/icsnet/transport/usbftdi"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "find":
		err = runFind(os.Args[2:])
	case "subscribe":
		err = runSubscribe(os.Args[2:])
	case "transmit":
		err = runTransmit(os.Args[2:])
	case "disk-read":
		err = runDiskRead(os.Args[2:])
	case "disk-write":
		err = runDiskWrite(os.Args[2:])
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "icsnetctl: unknown subcommand %q\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("icsnetctl: %v", err)
	}
}

func printUsage() {
	fmt.Println("icsnetctl - icsnet device inspection CLI")
	fmt.Println("Usage:")
	fmt.Println("  icsnetctl find -transport <name>")
	fmt.Println("  icsnetctl subscribe -transport <name> -serial <serial> [-canfd] [-duration <d>]")
	fmt.Println("  icsnetctl transmit -transport <name> -serial <serial> -arbid <hex> -data <hex>")
	fmt.Println("  icsnetctl disk-read -transport <name> -serial <serial> -pos <n> -len <n>")
	fmt.Println("  icsnetctl disk-write -transport <name> -serial <serial> -pos <n> -data <hex>")
	fmt.Println()
	fmt.Println("Example:")
	fmt.Println("  icsnetctl find -transport usbftdi")
	fmt.Println("  icsnetctl subscribe -transport ethertunnel -serial tap0 -duration 5s")
}

func runFind(args []string) error {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	transport := fs.String("transport", "", "restrict discovery to a single transport (default: all registered transports)")
	fs.Parse(args)

	lib := client.NewLibrary()
	devices, err := lib.FindDevices(*transport)
	if err != nil {
		return fmt.Errorf("find devices: %w", err)
	}
	if len(devices) == 0 {
		fmt.Println("no devices found")
		return nil
	}
	for _, d := range devices {
		fmt.Printf("%-20s %-30s product=0x%04X\n", d.Serial, d.Description, d.ProductID)
	}
	return nil
}

func runSubscribe(args []string) error {
	fs := flag.NewFlagSet("subscribe", flag.ExitOnError)
	transport := fs.String("transport", "", "transport name (usbftdi, ethertunnel, shm, loopback)")
	serial := fs.String("serial", "", "device serial number or interface/path identifier")
	canfd := fs.Bool("canfd", false, "enable CAN-FD decoding capability")
	duration := fs.Duration("duration", 5*time.Second, "how long to listen before exiting")
	fs.Parse(args)
	if *transport == "" || *serial == "" {
		return fmt.Errorf("-transport and -serial are required")
	}

	lib := client.NewLibrary()
	dev, err := lib.Open(*transport, *serial, icsnet.DeviceCapabilities{SupportCANFD: *canfd})
	if err != nil {
		return fmt.Errorf("open %s %s: %w", *transport, *serial, err)
	}
	defer dev.Close()
	dev.GoOnline()

	id := dev.Subscribe(func(msg icsnet.Message) {
		fmt.Printf("[%s] network=%d arbid=0x%X data=%s\n", msg.Timestamp.Format(time.RFC3339Nano), msg.Network, msg.ArbID, hex.EncodeToString(msg.Data))
	})
	defer dev.Unsubscribe(id)

	time.Sleep(*duration)
	return nil
}

func runTransmit(args []string) error {
	fs := flag.NewFlagSet("transmit", flag.ExitOnError)
	transport := fs.String("transport", "", "transport name")
	serial := fs.String("serial", "", "device serial number")
	arbID := fs.String("arbid", "0", "arbitration ID, hex (e.g. 123 or 0x123)")
	data := fs.String("data", "", "payload bytes, hex-encoded")
	canfd := fs.Bool("canfd", false, "transmit on the CAN-FD network")
	rtr := fs.Bool("rtr", false, "set the remote-transmission-request flag")
	fs.Parse(args)
	if *transport == "" || *serial == "" {
		return fmt.Errorf("-transport and -serial are required")
	}

	id, err := parseHexUint32(*arbID)
	if err != nil {
		return fmt.Errorf("-arbid: %w", err)
	}
	payload, err := hex.DecodeString(*data)
	if err != nil {
		return fmt.Errorf("-data: %w", err)
	}

	lib := client.NewLibrary()
	dev, err := lib.Open(*transport, *serial, icsnet.DeviceCapabilities{SupportCANFD: *canfd})
	if err != nil {
		return fmt.Errorf("open %s %s: %w", *transport, *serial, err)
	}
	defer dev.Close()
	dev.GoOnline()

	network := icsnet.NetworkCAN
	if *canfd {
		network = icsnet.NetworkCANFD
	}
	msg := icsnet.Message{Network: network, ArbID: id, Data: payload, RTR: *rtr}
	if !dev.Transmit(msg) {
		if ev, ok := dev.GetLastError(); ok {
			return fmt.Errorf("transmit failed: %s", icsnet.DescriptionForType(ev.Type))
		}
		return fmt.Errorf("transmit failed")
	}
	return nil
}

func runDiskRead(args []string) error {
	fs := flag.NewFlagSet("disk-read", flag.ExitOnError)
	transport := fs.String("transport", "", "transport name")
	serial := fs.String("serial", "", "device serial number")
	pos := fs.Uint64("pos", 0, "byte offset into the logical disk")
	length := fs.Uint64("len", 512, "number of bytes to read")
	timeout := fs.Duration("timeout", 0, "per-call timeout (0 uses the library default)")
	fs.Parse(args)
	if *transport == "" || *serial == "" {
		return fmt.Errorf("-transport and -serial are required")
	}

	lib := client.NewLibrary()
	dev, err := lib.Open(*transport, *serial, icsnet.DeviceCapabilities{})
	if err != nil {
		return fmt.Errorf("open %s %s: %w", *transport, *serial, err)
	}
	defer dev.Close()

	buf := make([]byte, *length)
	n, ok := dev.DiskRead(*pos, buf, *timeout)
	if !ok {
		if ev, errOk := dev.GetLastError(); errOk {
			return fmt.Errorf("disk read failed: %s", icsnet.DescriptionForType(ev.Type))
		}
		return fmt.Errorf("disk read failed")
	}
	fmt.Println(hex.EncodeToString(buf[:n]))
	return nil
}

func runDiskWrite(args []string) error {
	fs := flag.NewFlagSet("disk-write", flag.ExitOnError)
	transport := fs.String("transport", "", "transport name")
	serial := fs.String("serial", "", "device serial number")
	pos := fs.Uint64("pos", 0, "byte offset into the logical disk")
	data := fs.String("data", "", "bytes to write, hex-encoded")
	timeout := fs.Duration("timeout", 0, "per-call timeout (0 uses the library default)")
	fs.Parse(args)
	if *transport == "" || *serial == "" {
		return fmt.Errorf("-transport and -serial are required")
	}

	payload, err := hex.DecodeString(*data)
	if err != nil {
		return fmt.Errorf("-data: %w", err)
	}

	lib := client.NewLibrary()
	dev, err := lib.Open(*transport, *serial, icsnet.DeviceCapabilities{})
	if err != nil {
		return fmt.Errorf("open %s %s: %w", *transport, *serial, err)
	}
	defer dev.Close()

	n, ok := dev.DiskWrite(*pos, payload, *timeout)
	if !ok {
		if ev, errOk := dev.GetLastError(); errOk {
			return fmt.Errorf("disk write failed: %s", icsnet.DescriptionForType(ev.Type))
		}
		return fmt.Errorf("disk write failed")
	}
	fmt.Printf("wrote %d bytes\n", n)
	return nil
}

func parseHexUint32(s string) (uint32, error) {
	s = trimHexPrefix(s)
	var v uint32
	if _, err := fmt.Sscanf(s, "%x", &v); err != nil {
		return 0, err
	}
	return v, nil
}

func trimHexPrefix(s string) string {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
