// Package mqtt publishes looking glass events to an MQTT broker.
//
// The gateway only publishes. Every finished execution is sent to
// lookingglass/execution/{device} as JSON, and the gateway's own
// availability is kept on the retained topic lookingglass/system/status,
// with a Last Will so that subscribers see a crash as "offline".
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	engine.AddObserver(mqtt.NewExecutionPublisher(client))
//
// Payloads never contain device credentials or command output, only the
// rendered command line and the size of the output.
package mqtt
