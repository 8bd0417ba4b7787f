// Package influxdb records looking glass execution metrics in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Every finished
// execution becomes one point in the lookingglass_execution measurement,
// tagged by device, command, driver and outcome, with the duration and
// output size as fields.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	engine.AddObserver(client)
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Asynchronous write failures are delivered to the
// callback set with SetOnError.
package influxdb
