package cmd

import (
	"natively/cmd/natively/cmd/geofence"
	"natively/cmd/natively/cmd/storage"
	"natively/cmd/natively/cmd/sync"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(bridgeCmd)
	bridgeCmd.AddCommand(bridgeCallCmd)
	bridgeCmd.AddCommand(bridgeTypesCmd)
	rootCmd.AddCommand(crashesCmd)

	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountDeleteCmd)

	// Геозоны
	rootCmd.AddCommand(geofence.GeofenceCmd)
	geofence.GeofenceCmd.AddCommand(geofence.AddCmd)
	geofence.GeofenceCmd.AddCommand(geofence.RemoveCmd)
	geofence.GeofenceCmd.AddCommand(geofence.ListCmd)
	geofence.GeofenceCmd.AddCommand(geofence.StatusCmd)
	geofence.GeofenceCmd.AddCommand(geofence.StartCmd)
	geofence.GeofenceCmd.AddCommand(geofence.StopCmd)
	geofence.GeofenceCmd.AddCommand(geofence.NotificationsCmd)
	geofence.GeofenceCmd.AddCommand(geofence.EnterCmd)

	// Хранилище страницы
	rootCmd.AddCommand(storage.StorageCmd)
	storage.StorageCmd.AddCommand(storage.GetCmd)
	storage.StorageCmd.AddCommand(storage.SetCmd)
	storage.StorageCmd.AddCommand(storage.RemoveCmd)

	rootCmd.AddCommand(sync.SyncCmd)
}
